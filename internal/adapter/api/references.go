package api

import (
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (s *Server) MountReferences() {
	refs := s.handler.Group("/api/classes/references")

	refs.GET("/trainers/:id", s.IsTrainerReferenced)
	refs.GET("/teams/:id", s.IsTeamReferenced)
	refs.GET("/members/:id", s.IsMemberReferenced)

	// Sibling services still call these paths before deleting a trainer,
	// team or member.
	legacy := s.handler.Group("/api/clases/verificar")

	legacy.GET("/entrenador/:id", s.IsTrainerReferenced)
	legacy.GET("/equipo/:id", s.IsTeamReferenced)
	legacy.GET("/miembro/:id", s.IsMemberReferenced)
}

type ReferenceRequest struct {
	ID string `param:"id" validate:"required"`
}

type ReferenceResponse struct {
	Referenced   bool `json:"referenced"`
	Referenciado bool `json:"referenciado"`
}

func referenceResponse(referenced bool) ReferenceResponse {
	return ReferenceResponse{Referenced: referenced, Referenciado: referenced}
}

func (s *Server) IsTrainerReferenced(c echo.Context) error {
	var req ReferenceRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	referenced, err := s.queryService.IsTrainerReferenced(c.Request().Context(), class.TrainerID(req.ID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, referenceResponse(referenced))
}

func (s *Server) IsTeamReferenced(c echo.Context) error {
	var req ReferenceRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	referenced, err := s.queryService.IsTeamReferenced(c.Request().Context(), class.TeamID(req.ID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, referenceResponse(referenced))
}

func (s *Server) IsMemberReferenced(c echo.Context) error {
	var req ReferenceRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	referenced, err := s.queryService.IsMemberReferenced(c.Request().Context(), class.MemberID(req.ID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, referenceResponse(referenced))
}
