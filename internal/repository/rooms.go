package repository

import (
	"context"
)

// Room name prefixes shared with the websocket layer.
const (
	TeamRoomPrefix    = "team:"
	ProjectRoomPrefix = "project:"
)

// RoomDirectory derives the team/project rooms a user should join: their
// teams, plus every project of those teams.
type RoomDirectory struct {
	teams    *TeamRepo
	projects *ProjectRepo
}

func NewRoomDirectory(teams *TeamRepo, projects *ProjectRepo) *RoomDirectory {
	return &RoomDirectory{teams: teams, projects: projects}
}

func (d *RoomDirectory) RoomsForUser(ctx context.Context, userID string) ([]string, error) {
	teams, err := d.teams.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var rooms []string
	for _, t := range teams {
		teamID := t.ID.Hex()
		rooms = append(rooms, TeamRoomPrefix+teamID)
		projects, err := d.projects.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			rooms = append(rooms, ProjectRoomPrefix+p.ID.Hex())
		}
	}
	return rooms, nil
}
