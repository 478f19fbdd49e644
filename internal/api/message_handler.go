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

type messageReq struct {
	ProjectID string `json:"project"`
	Content   string `json:"content"`
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	var req messageReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.ProjectID == "" || req.Content == "" {
		return fiber.NewError(fiber.StatusBadRequest, "project and content are required")
	}
	project, err := s.projects.GetByID(c.Context(), req.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "project not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	actor := auth.UserID(c)
	msg, err := s.messages.Create(c.Context(), &models.Message{
		ProjectID: req.ProjectID,
		Sender:    actor,
		Content:   req.Content,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := s.hub.BroadcastRoom(repository.ProjectRoomPrefix+req.ProjectID, event(ws.EventMessageNew, msg)); err != nil {
		s.log.Warnw("message broadcast failed", "project", req.ProjectID, "error", err)
	}

	// Messages use the legacy role-based reach: editors and commenters plus
	// notify-all admins, independent of stored settings.
	s.notify(c, notification.Request{
		Category:   notification.CategoryMessages,
		Strategy:   notification.StrategyRole,
		ProjectID:  req.ProjectID,
		ActorID:    actor,
		Message:    "New message in " + project.Name,
		EntityID:   msg.ID.Hex(),
		EntityType: "Message",
		Extra:      notification.Extra{ProjectName: project.Name},
	})

	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 100))
	msgs, err := s.messages.ListByProject(c.Context(), c.Params("projectId"), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(msgs)
}

func (s *Server) markMessagesRead(c *fiber.Ctx) error {
	n, err := s.messages.MarkRead(c.Context(), c.Params("projectId"), auth.UserID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (s *Server) unreadMessageCount(c *fiber.Ctx) error {
	n, err := s.messages.UnreadCount(c.Context(), c.Params("projectId"), auth.UserID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"count": n})
}
