package notification

import (
	"context"
	"fmt"

	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

// RoleStore reads project-scoped role assignments.
type RoleStore interface {
	ListRoles(ctx context.Context, projectID string) ([]models.RoleAssignment, error)
}

// PreferenceStore reads project notification settings. Each getter returns
// nil (no error) when the record shape does not exist for the project; at
// most one shape is authoritative at a time.
type PreferenceStore interface {
	GetRoleMatrix(ctx context.Context, projectID string) (models.RoleMatrix, error)
	GetUserAllowLists(ctx context.Context, projectID string) (*models.AllowLists, error)
	GetUserPreference(ctx context.Context, userID, projectID string) (*models.UserPreference, error)
}

// Resolver maps an action to its recipient set. It has no side effects and
// is deterministic for a given store snapshot.
type Resolver struct {
	roles RoleStore
	prefs PreferenceStore
}

func NewResolver(roles RoleStore, prefs PreferenceStore) *Resolver {
	return &Resolver{roles: roles, prefs: prefs}
}

// Resolve returns the deduplicated recipient user IDs for one action.
// The actor is always excluded, and recipients who muted the actor via
// their team-member preferences are dropped. Any store error aborts the
// whole resolution.
func (r *Resolver) Resolve(ctx context.Context, strategy Strategy, category Category, projectID, actorID string, targets []string) ([]string, error) {
	var (
		selected []string
		err      error
	)
	switch {
	case category.direct():
		// Direct addressing: assignment and mention name their recipients
		// outright. No fallback to broadcast when targets are empty.
		selected = append(selected, targets...)
	case category == CategoryAdminOnly:
		selected, err = r.adminsWithNotifyAll(ctx, projectID)
	case category.broadcast():
		if strategy == StrategyRole {
			selected, err = r.resolveByRole(ctx, category, projectID)
		} else {
			selected, err = r.resolveByPreference(ctx, category, projectID)
		}
	default:
		return nil, fmt.Errorf("unknown notification category %q", category)
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(selected))
	seen := make(map[string]struct{}, len(selected))
	for _, uid := range selected {
		if uid == "" || uid == actorID {
			continue
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		pref, err := r.prefs.GetUserPreference(ctx, uid, projectID)
		if err != nil {
			return nil, fmt.Errorf("user preference lookup for %s: %w", uid, err)
		}
		if pref != nil && pref.Muted(actorID) {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}
	return out, nil
}

// resolveByRole is the legacy shorthand path used by the comment and
// message handlers: recipients come straight from role assignments, with
// notify-all admins folded in. Stored settings are ignored, so this path
// still resolves when the project has no settings record.
func (r *Resolver) resolveByRole(ctx context.Context, category Category, projectID string) ([]string, error) {
	assignments, err := r.roles.ListRoles(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list roles for project %s: %w", projectID, err)
	}
	eligible := shorthandRoles(category)
	var out []string
	for _, a := range assignments {
		switch {
		case eligible[a.Role]:
			out = append(out, a.UserID)
		case a.Role == models.RoleAdmin && a.NotifyAll:
			out = append(out, a.UserID)
		}
	}
	return out, nil
}

func shorthandRoles(category Category) map[models.Role]bool {
	switch category {
	case CategoryComments:
		return map[models.Role]bool{models.RoleCommenter: true}
	case CategoryMessages:
		return map[models.Role]bool{models.RoleEditor: true, models.RoleCommenter: true}
	case CategoryTasksAdded, CategoryTaskUpdates:
		return map[models.Role]bool{models.RoleEditor: true}
	}
	return nil
}

// resolveByPreference derives recipients from whichever settings shape the
// project has. Absent any settings record the result is empty: missing
// preferences fail closed, never open.
func (r *Resolver) resolveByPreference(ctx context.Context, category Category, projectID string) ([]string, error) {
	assignments, err := r.roles.ListRoles(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list roles for project %s: %w", projectID, err)
	}

	matrix, err := r.prefs.GetRoleMatrix(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("role matrix lookup for project %s: %w", projectID, err)
	}
	if matrix != nil {
		var out []string
		for _, a := range assignments {
			if flags, ok := matrix[a.Role]; ok && categoryEnabled(flags, category) {
				out = append(out, a.UserID)
				continue
			}
			if a.Role == models.RoleAdmin && a.NotifyAll {
				out = append(out, a.UserID)
			}
		}
		return out, nil
	}

	lists, err := r.prefs.GetUserAllowLists(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("allow-list lookup for project %s: %w", projectID, err)
	}
	if lists != nil {
		out := append([]string(nil), allowListFor(lists, category)...)
		for _, a := range assignments {
			if a.Role == models.RoleAdmin && a.NotifyAll {
				out = append(out, a.UserID)
			}
		}
		return out, nil
	}

	// Per-user boolean records. A notify-all admin still only qualifies if
	// the project has at least one record: no record at all means no
	// preference state exists and the category resolves empty.
	var (
		out   []string
		found bool
	)
	for _, a := range assignments {
		pref, err := r.prefs.GetUserPreference(ctx, a.UserID, projectID)
		if err != nil {
			return nil, fmt.Errorf("user preference lookup for %s: %w", a.UserID, err)
		}
		if pref == nil {
			if a.Role == models.RoleAdmin && a.NotifyAll {
				out = append(out, a.UserID)
			}
			continue
		}
		found = true
		if userPrefEnabled(pref, category) || (a.Role == models.RoleAdmin && a.NotifyAll) {
			out = append(out, a.UserID)
		}
	}
	if !found {
		return nil, nil
	}
	return out, nil
}

func (r *Resolver) adminsWithNotifyAll(ctx context.Context, projectID string) ([]string, error) {
	assignments, err := r.roles.ListRoles(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list roles for project %s: %w", projectID, err)
	}
	var out []string
	for _, a := range assignments {
		if a.Role == models.RoleAdmin && a.NotifyAll {
			out = append(out, a.UserID)
		}
	}
	return out, nil
}

func categoryEnabled(flags models.CategoryFlags, category Category) bool {
	switch category {
	case CategoryTaskUpdates:
		return flags.TaskUpdates
	case CategoryTasksAdded:
		return flags.TasksAdded
	case CategoryComments:
		return flags.Comments
	case CategoryMessages:
		return flags.Messages
	}
	return false
}

func allowListFor(lists *models.AllowLists, category Category) []string {
	switch category {
	case CategoryTaskUpdates:
		return lists.StatusUpdates
	case CategoryTasksAdded:
		return lists.TasksAdded
	case CategoryComments:
		return lists.Comments
	case CategoryMessages:
		return lists.Messages
	}
	return nil
}

func userPrefEnabled(pref *models.UserPreference, category Category) bool {
	switch category {
	case CategoryTaskUpdates:
		return pref.StatusUpdates
	case CategoryTasksAdded:
		return pref.TasksAdded
	case CategoryComments:
		return pref.Comments
	case CategoryMessages:
		return pref.Messages
	}
	return false
}
