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

type commentReq struct {
	TaskID   string   `json:"task"`
	Text     string   `json:"text"`
	Mentions []string `json:"mentions"`
}

func (s *Server) createComment(c *fiber.Ctx) error {
	var req commentReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.TaskID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "task is required")
	}
	task, err := s.tasks.GetByID(c.Context(), req.TaskID)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "task not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	actor := auth.UserID(c)
	comment, err := s.comments.Create(c.Context(), &models.Comment{
		TaskID: req.TaskID,
		Author: actor,
		Text:   req.Text,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := s.hub.BroadcastRoom(repository.ProjectRoomPrefix+task.ProjectID, event(ws.EventCommentNew, comment)); err != nil {
		s.log.Warnw("comment broadcast failed", "project", task.ProjectID, "error", err)
	}

	// Comments use the legacy role-based reach: commenters plus notify-all
	// admins, independent of stored settings.
	s.notify(c, notification.Request{
		Category:   notification.CategoryComments,
		Strategy:   notification.StrategyRole,
		ProjectID:  task.ProjectID,
		ActorID:    actor,
		Message:    "New comment on " + task.Title,
		EntityID:   comment.ID.Hex(),
		EntityType: "Comment",
		Extra:      notification.Extra{TaskTitle: task.Title},
	})
	if len(req.Mentions) > 0 {
		s.notify(c, notification.Request{
			Category:   notification.CategoryTaskMentioned,
			ProjectID:  task.ProjectID,
			ActorID:    actor,
			Targets:    req.Mentions,
			Message:    "You were mentioned in a comment on " + task.Title,
			EntityID:   comment.ID.Hex(),
			EntityType: "Comment",
			Extra:      notification.Extra{TaskTitle: task.Title},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *Server) listComments(c *fiber.Ctx) error {
	taskID := c.Query("taskId")
	if taskID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "taskId is required")
	}
	comments, err := s.comments.ListByTask(c.Context(), taskID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(comments)
}

func (s *Server) deleteComment(c *fiber.Ctx) error {
	err := s.comments.Delete(c.Context(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "comment not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"message": "comment deleted"})
}
