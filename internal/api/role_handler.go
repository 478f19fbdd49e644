package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
	"github.com/fidelzky-bot/projectmanagerapp/internal/notification"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
	"github.com/fidelzky-bot/projectmanagerapp/internal/ws"
)

type roleReq struct {
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	NotifyAll bool   `json:"notifyAll"`
}

func (s *Server) listRoles(c *fiber.Ctx) error {
	roles, err := s.roles.ListRoles(c.Context(), c.Params("projectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(roles)
}

// getRole returns one user's assignment. Without a stored record the user
// acts with the default role, so that is what callers see.
func (s *Server) getRole(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	userID := c.Params("userId")
	a, err := s.roles.GetRole(c.Context(), projectID, userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if a == nil {
		a = &models.RoleAssignment{ProjectID: projectID, UserID: userID, Role: models.DefaultRole}
	}
	return c.JSON(a)
}

func (s *Server) setRole(c *fiber.Ctx) error {
	var req roleReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	role := models.Role(req.Role)
	if req.UserID == "" || !models.ValidRole(role) {
		return fiber.NewError(fiber.StatusBadRequest, "userId and a valid role are required")
	}
	projectID := c.Params("projectId")
	updated, err := s.roles.SetRole(c.Context(), models.RoleAssignment{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
		NotifyAll: req.NotifyAll && role == models.RoleAdmin,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	// Room membership derives from roles; the affected user's connections
	// must re-run the join handshake to pick the change up.
	s.pushMembershipChanged(req.UserID, projectID)

	s.notify(c, notification.Request{
		Category:   notification.CategoryAdminOnly,
		ProjectID:  projectID,
		ActorID:    auth.UserID(c),
		Message:    "Role changed to " + req.Role,
		EntityID:   projectID,
		EntityType: "Project",
		Extra:      notification.Extra{NewRole: req.Role},
	})

	return c.JSON(updated)
}

func (s *Server) removeRole(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	userID := c.Params("userId")
	err := s.roles.RemoveRole(c.Context(), projectID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "role not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	s.pushMembershipChanged(userID, projectID)

	s.notify(c, notification.Request{
		Category:   notification.CategoryAdminOnly,
		ProjectID:  projectID,
		ActorID:    auth.UserID(c),
		Message:    "Role removed",
		EntityID:   projectID,
		EntityType: "Project",
	})

	return c.JSON(fiber.Map{"message": "role removed"})
}

func (s *Server) pushMembershipChanged(userID, projectID string) {
	err := s.hub.PushToUser(userID, event(ws.EventMembershipChanged, fiber.Map{"projectId": projectID}))
	if err != nil {
		s.log.Warnw("membership change push failed", "user", userID, "error", err)
	}
}
