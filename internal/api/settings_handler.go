package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

func (s *Server) getSettings(c *fiber.Ctx) error {
	settings, err := s.settings.GetOrCreateAllowLists(c.Context(), c.Params("projectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(settings)
}

type settingsReq struct {
	StatusUpdates []string `json:"statusUpdates"`
	TasksAdded    []string `json:"tasksAdded"`
	Messages      []string `json:"messages"`
	Comments      []string `json:"comments"`
}

func (s *Server) updateSettings(c *fiber.Ctx) error {
	var req settingsReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	updated, err := s.settings.UpsertAllowLists(c.Context(), &models.AllowLists{
		ProjectID:     c.Params("projectId"),
		StatusUpdates: req.StatusUpdates,
		TasksAdded:    req.TasksAdded,
		Messages:      req.Messages,
		Comments:      req.Comments,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(updated)
}

type userPrefReq struct {
	StatusUpdates         bool                          `json:"statusUpdates"`
	TasksAdded            bool                          `json:"tasksAdded"`
	Messages              bool                          `json:"messages"`
	Comments              bool                          `json:"comments"`
	TeamMemberPreferences []models.TeamMemberPreference `json:"teamMemberPreferences"`
}

// updateUserPreference writes the caller's own per-project record,
// including per-member mutes.
func (s *Server) updateUserPreference(c *fiber.Ctx) error {
	var req userPrefReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	updated, err := s.settings.UpsertUserPreference(c.Context(), &models.UserPreference{
		UserID:                auth.UserID(c),
		ProjectID:             c.Params("projectId"),
		StatusUpdates:         req.StatusUpdates,
		TasksAdded:            req.TasksAdded,
		Messages:              req.Messages,
		Comments:              req.Comments,
		TeamMemberPreferences: req.TeamMemberPreferences,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(updated)
}
