package api

import (
	classservice "github.com/burenotti/go_classes_backend/internal/app/classes"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountClasses() {
	classes := s.handler.Group("/api/classes")

	classes.POST("", s.ScheduleClass)
	classes.GET("", s.ListClasses)
	classes.GET("/:class_id", s.GetClass)
	classes.DELETE("/:class_id", s.DeleteClass)

	classes.PUT("/:class_id/trainer/:trainer_id", s.AssignTrainer)
	classes.DELETE("/:class_id/trainer", s.RemoveTrainer)

	classes.PUT("/:class_id/teams/:team_id", s.AddTeam)
	classes.DELETE("/:class_id/teams/:team_id", s.RemoveTeam)

	classes.PUT("/:class_id/members/:member_id", s.AddMember)
	classes.DELETE("/:class_id/members/:member_id", s.RemoveMember)
}

type Class struct {
	ClassID   string    `json:"class_id"`
	Name      string    `json:"name"`
	Schedule  time.Time `json:"schedule"`
	Capacity  int       `json:"capacity"`
	TrainerID *string   `json:"trainer_id,omitempty"`
	Teams     []string  `json:"teams"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func classResponse(c *class.Class) Class {
	var trainerID *string
	if c.TrainerID != nil {
		id := string(*c.TrainerID)
		trainerID = &id
	}
	return Class{
		ClassID:   string(c.ClassID),
		Name:      c.Name,
		Schedule:  c.Schedule,
		Capacity:  c.Capacity,
		TrainerID: trainerID,
		Teams: lo.Map(c.Teams, func(id class.TeamID, _ int) string {
			return string(id)
		}),
		Members: lo.Map(c.Members, func(id class.MemberID, _ int) string {
			return string(id)
		}),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type ScheduleClassRequest struct {
	ClassID   string    `json:"class_id" validate:"required,notblank"`
	Name      string    `json:"name" validate:"required,notblank"`
	Schedule  time.Time `json:"schedule" validate:"required"`
	Capacity  int       `json:"capacity" validate:"gt=0"`
	TrainerID *string   `json:"trainer_id" validate:"omitempty,notblank"`
	Teams     []string  `json:"teams" validate:"dive,notblank"`
	Members   []string  `json:"members" validate:"dive,notblank"`
}

func (s *Server) ScheduleClass(c echo.Context) error {
	var req ScheduleClassRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	var trainerID *class.TrainerID
	if req.TrainerID != nil {
		id := class.TrainerID(*req.TrainerID)
		trainerID = &id
	}

	created, err := s.classService.Schedule(c.Request().Context(), classservice.Draft{
		ClassID:   class.ClassID(req.ClassID),
		Name:      req.Name,
		Schedule:  req.Schedule,
		Capacity:  req.Capacity,
		TrainerID: trainerID,
		Teams: lo.Map(req.Teams, func(id string, _ int) class.TeamID {
			return class.TeamID(id)
		}),
		Members: lo.Map(req.Members, func(id string, _ int) class.MemberID {
			return class.MemberID(id)
		}),
	})
	if err != nil {
		return s.Fail(c, err)
	}

	return c.JSON(http.StatusCreated, classResponse(created))
}

type ListClassesResponse struct {
	Classes []Class `json:"classes"`
}

func (s *Server) ListClasses(c echo.Context) error {
	list, err := s.classService.List(c.Request().Context())
	if err != nil {
		return s.Fail(c, err)
	}

	return c.JSON(http.StatusOK, ListClassesResponse{
		Classes: lo.Map(list, func(item *class.Class, _ int) Class {
			return classResponse(item)
		}),
	})
}

type ClassRequest struct {
	ClassID string `param:"class_id" validate:"required"`
}

func (s *Server) GetClass(c echo.Context) error {
	var req ClassRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	found, err := s.classService.Get(c.Request().Context(), class.ClassID(req.ClassID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, classResponse(found))
}

func (s *Server) DeleteClass(c echo.Context) error {
	var req ClassRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	if err := s.classService.Delete(c.Request().Context(), class.ClassID(req.ClassID)); err != nil {
		return s.Fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type TrainerRequest struct {
	ClassID   string `param:"class_id" validate:"required"`
	TrainerID string `param:"trainer_id" validate:"required,notblank"`
}

func (s *Server) AssignTrainer(c echo.Context) error {
	var req TrainerRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	updated, err := s.classService.AssignTrainer(ctx, class.ClassID(req.ClassID), class.TrainerID(req.TrainerID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, classResponse(updated))
}

func (s *Server) RemoveTrainer(c echo.Context) error {
	var req ClassRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	updated, err := s.classService.RemoveTrainer(c.Request().Context(), class.ClassID(req.ClassID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, classResponse(updated))
}

type TeamRequest struct {
	ClassID string `param:"class_id" validate:"required"`
	TeamID  string `param:"team_id" validate:"required,notblank"`
}

func (s *Server) AddTeam(c echo.Context) error {
	var req TeamRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	updated, err := s.classService.AddTeam(c.Request().Context(), class.ClassID(req.ClassID), class.TeamID(req.TeamID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, classResponse(updated))
}

func (s *Server) RemoveTeam(c echo.Context) error {
	var req TeamRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	updated, err := s.classService.RemoveTeam(c.Request().Context(), class.ClassID(req.ClassID), class.TeamID(req.TeamID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, classResponse(updated))
}

type MemberRequest struct {
	ClassID  string `param:"class_id" validate:"required"`
	MemberID string `param:"member_id" validate:"required,notblank"`
}

func (s *Server) AddMember(c echo.Context) error {
	var req MemberRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	updated, err := s.classService.AddMember(ctx, class.ClassID(req.ClassID), class.MemberID(req.MemberID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, classResponse(updated))
}

func (s *Server) RemoveMember(c echo.Context) error {
	var req MemberRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	updated, err := s.classService.RemoveMember(ctx, class.ClassID(req.ClassID), class.MemberID(req.MemberID))
	if err != nil {
		return s.Fail(c, err)
	}
	return c.JSON(http.StatusOK, classResponse(updated))
}
