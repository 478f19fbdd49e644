package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
)

type attachmentReq struct {
	TaskID    string `json:"task"`
	FileName  string `json:"fileName"`
	URL       string `json:"url"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

// createAttachment records metadata for a blob that already lives in
// external storage.
func (s *Server) createAttachment(c *fiber.Ctx) error {
	var req attachmentReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.TaskID == "" || req.URL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "task and url are required")
	}
	attachment, err := s.attachments.Create(c.Context(), &models.Attachment{
		TaskID:     req.TaskID,
		FileName:   req.FileName,
		URL:        req.URL,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		UploadedBy: auth.UserID(c),
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(attachment)
}

func (s *Server) listAttachments(c *fiber.Ctx) error {
	attachments, err := s.attachments.ListByTask(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(attachments)
}

func (s *Server) deleteAttachment(c *fiber.Ctx) error {
	err := s.attachments.Delete(c.Context(), c.Params("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "attachment not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"message": "attachment deleted"})
}
