package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
	"github.com/fidelzky-bot/projectmanagerapp/internal/ws"
)

type teamReq struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func (s *Server) createTeam(c *fiber.Ctx) error {
	var req teamReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	members := req.Members
	actor := auth.UserID(c)
	found := false
	for _, m := range members {
		if m == actor {
			found = true
			break
		}
	}
	if !found {
		members = append(members, actor)
	}
	team, err := s.teams.Create(c.Context(), &models.Team{Name: req.Name, Members: members})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}

func (s *Server) listMyTeams(c *fiber.Ctx) error {
	teams, err := s.teams.ListForUser(c.Context(), auth.UserID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(teams)
}

type memberReq struct {
	UserID string `json:"userId"`
}

func (s *Server) addTeamMember(c *fiber.Ctx) error {
	var req memberReq
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "userId is required")
	}
	teamID := c.Params("id")
	err := s.teams.AddMember(c.Context(), teamID, req.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "team not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	s.pushTeamMembershipChanged(req.UserID, teamID)
	return c.JSON(fiber.Map{"message": "member added"})
}

func (s *Server) removeTeamMember(c *fiber.Ctx) error {
	teamID := c.Params("id")
	userID := c.Params("userId")
	err := s.teams.RemoveMember(c.Context(), teamID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "team not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	s.pushTeamMembershipChanged(userID, teamID)
	return c.JSON(fiber.Map{"message": "member removed"})
}

func (s *Server) pushTeamMembershipChanged(userID, teamID string) {
	err := s.hub.PushToUser(userID, event(ws.EventMembershipChanged, fiber.Map{"teamId": teamID}))
	if err != nil {
		s.log.Warnw("membership change push failed", "user", userID, "error", err)
	}
}
