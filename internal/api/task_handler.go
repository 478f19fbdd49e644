package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
	"github.com/fidelzky-bot/projectmanagerapp/internal/notification"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
	"github.com/fidelzky-bot/projectmanagerapp/internal/ws"
)

type taskReq struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
	AssignedTo  string     `json:"assignedTo"`
	ProjectID   string     `json:"project"`
	Status      string     `json:"status"`
	Moved       bool       `json:"moved"`
	Mentions    []string   `json:"mentions"`
	Attachments []string   `json:"attachments"`
}

// notify runs one dispatch and logs failures. Fan-out health never decides
// the fate of the triggering action; see DESIGN.md for the policy call.
func (s *Server) notify(c *fiber.Ctx, req notification.Request) {
	if _, err := s.dispatcher.Notify(c.Context(), req); err != nil {
		s.log.Errorw("notification dispatch failed",
			"category", req.Category, "project", req.ProjectID, "error", err)
	}
}

func (s *Server) createTask(c *fiber.Ctx) error {
	var req taskReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.ProjectID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "project is required")
	}
	if req.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}
	project, err := s.projects.GetByID(c.Context(), req.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "project not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	actor := auth.UserID(c)
	task, err := s.tasks.Create(c.Context(), &models.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Attachments: req.Attachments,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := s.hub.BroadcastRoom(repository.ProjectRoomPrefix+req.ProjectID, event(ws.EventTaskUpdated, task)); err != nil {
		s.log.Warnw("task broadcast failed", "project", req.ProjectID, "error", err)
	}

	s.notify(c, notification.Request{
		Category:   notification.CategoryTasksAdded,
		ProjectID:  req.ProjectID,
		ActorID:    actor,
		Message:    "New task: " + task.Title,
		EntityID:   task.ID.Hex(),
		EntityType: "Task",
		Extra:      notification.Extra{TaskTitle: task.Title, ProjectName: project.Name},
	})
	if req.AssignedTo != "" {
		s.notify(c, notification.Request{
			Category:   notification.CategoryTaskAssigned,
			ProjectID:  req.ProjectID,
			ActorID:    actor,
			Targets:    []string{req.AssignedTo},
			Message:    "You were assigned to " + task.Title,
			EntityID:   task.ID.Hex(),
			EntityType: "Task",
			Extra:      notification.Extra{TaskTitle: task.Title, ProjectName: project.Name},
		})
	}
	if len(req.Mentions) > 0 {
		s.notify(c, notification.Request{
			Category:   notification.CategoryTaskMentioned,
			ProjectID:  req.ProjectID,
			ActorID:    actor,
			Targets:    req.Mentions,
			Message:    "You were mentioned in " + task.Title,
			EntityID:   task.ID.Hex(),
			EntityType: "Task",
			Extra:      notification.Extra{TaskTitle: task.Title, ProjectName: project.Name},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	tasks, err := s.tasks.List(c.Context(), c.Query("project"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(tasks)
}

func (s *Server) getTask(c *fiber.Ctx) error {
	task, err := s.tasks.GetByID(c.Context(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "task not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(task)
}

func (s *Server) updateTask(c *fiber.Ctx) error {
	id := c.Params("id")
	old, err := s.tasks.GetByID(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "task not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var req taskReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	updated, err := s.tasks.Update(c.Context(), id, &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Attachments: req.Attachments,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "task not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := s.hub.BroadcastRoom(repository.ProjectRoomPrefix+old.ProjectID, event(ws.EventTaskUpdated, updated)); err != nil {
		s.log.Warnw("task broadcast failed", "project", old.ProjectID, "error", err)
	}

	actor := auth.UserID(c)
	kind := notification.KindTaskEdited
	message := "Task updated: " + updated.Title
	switch {
	case req.Moved:
		kind = notification.KindTaskMoved
		message = "Task moved: " + updated.Title
	case old.Status != updated.Status:
		kind = notification.KindStatusUpdate
		message = "Task status changed: " + updated.Title
	}
	s.notify(c, notification.Request{
		Category:   notification.CategoryTaskUpdates,
		Kind:       kind,
		ProjectID:  old.ProjectID,
		ActorID:    actor,
		Message:    message,
		EntityID:   updated.ID.Hex(),
		EntityType: "Task",
		Extra:      notification.Extra{TaskTitle: updated.Title},
	})
	if updated.AssignedTo != "" && updated.AssignedTo != old.AssignedTo {
		s.notify(c, notification.Request{
			Category:   notification.CategoryTaskAssigned,
			ProjectID:  old.ProjectID,
			ActorID:    actor,
			Targets:    []string{updated.AssignedTo},
			Message:    "You were assigned to " + updated.Title,
			EntityID:   updated.ID.Hex(),
			EntityType: "Task",
			Extra:      notification.Extra{TaskTitle: updated.Title},
		})
	}

	return c.JSON(updated)
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	deleted, err := s.tasks.Delete(c.Context(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "task not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := s.hub.BroadcastRoom(repository.ProjectRoomPrefix+deleted.ProjectID, event(ws.EventTaskUpdated, fiber.Map{"deleted": deleted.ID.Hex()})); err != nil {
		s.log.Warnw("task broadcast failed", "project", deleted.ProjectID, "error", err)
	}

	s.notify(c, notification.Request{
		Category:   notification.CategoryTaskUpdates,
		Kind:       notification.KindTaskDeleted,
		ProjectID:  deleted.ProjectID,
		ActorID:    auth.UserID(c),
		Message:    "Task deleted: " + deleted.Title,
		EntityID:   deleted.ID.Hex(),
		EntityType: "Task",
		Extra:      notification.Extra{TaskTitle: deleted.Title},
	})

	return c.JSON(fiber.Map{"message": "task deleted"})
}
