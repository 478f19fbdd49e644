package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
)

func (s *Server) listNotifications(c *fiber.Ctx) error {
	notifs, err := s.notifs.ListForUser(c.Context(), auth.UserID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(notifs)
}

func (s *Server) markNotificationRead(c *fiber.Ctx) error {
	// The store scopes the update to the caller, so another user's record
	// is indistinguishable from a missing one and is never touched.
	n, err := s.notifs.MarkRead(c.Context(), c.Params("id"), auth.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "notification not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(n)
}

func (s *Server) markAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notifs.MarkAllRead(c.Context(), auth.UserID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"updated": n})
}
