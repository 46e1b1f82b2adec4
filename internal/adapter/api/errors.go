package api

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/labstack/echo/v4"
	"net/http"
)

const internalErrorMessage = "internal server error"

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

// Fail writes err with the status of its kind. Errors of unknown kind are
// logged and reported without details.
func (s *Server) Fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return JsonError(c, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrInvalidOperation), errors.Is(err, domain.ErrValidation):
		return JsonError(c, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return JsonError(c, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
		return JsonError(c, http.StatusInternalServerError, internalErrorMessage)
	}
}
