package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
)

type projectReq struct {
	Name   string `json:"name"`
	TeamID string `json:"teamId"`
}

func (s *Server) createProject(c *fiber.Ctx) error {
	var req projectReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	project, err := s.projects.Create(c.Context(), &models.Project{Name: req.Name, TeamID: req.TeamID})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	// The creator administers their project.
	if _, err := s.roles.SetRole(c.Context(), models.RoleAssignment{
		ProjectID: project.ID.Hex(),
		UserID:    auth.UserID(c),
		Role:      models.RoleAdmin,
	}); err != nil {
		s.log.Warnw("creator role assignment failed", "project", project.ID.Hex(), "error", err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (s *Server) listProjects(c *fiber.Ctx) error {
	projects, err := s.projects.List(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(projects)
}

func (s *Server) getProject(c *fiber.Ctx) error {
	project, err := s.projects.GetByID(c.Context(), c.Params("projectId"))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "project not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(project)
}

func (s *Server) deleteProject(c *fiber.Ctx) error {
	err := s.projects.Delete(c.Context(), c.Params("projectId"))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "project not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"message": "project deleted"})
}
