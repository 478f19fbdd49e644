package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

type fakeRoles struct {
	assignments []models.RoleAssignment
	err         error
}

func (f *fakeRoles) ListRoles(_ context.Context, _ string) ([]models.RoleAssignment, error) {
	return f.assignments, f.err
}

type fakePrefs struct {
	matrix    models.RoleMatrix
	lists     *models.AllowLists
	userPrefs map[string]*models.UserPreference
	err       error
}

func (f *fakePrefs) GetRoleMatrix(_ context.Context, _ string) (models.RoleMatrix, error) {
	return f.matrix, f.err
}

func (f *fakePrefs) GetUserAllowLists(_ context.Context, _ string) (*models.AllowLists, error) {
	return f.lists, f.err
}

func (f *fakePrefs) GetUserPreference(_ context.Context, userID, _ string) (*models.UserPreference, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.userPrefs[userID], nil
}

// Project P: U1 admin with notify-all, U2 editor, U3 commenter, U4 viewer.
func projectRoles() *fakeRoles {
	return &fakeRoles{assignments: []models.RoleAssignment{
		{ProjectID: "p1", UserID: "u1", Role: models.RoleAdmin, NotifyAll: true},
		{ProjectID: "p1", UserID: "u2", Role: models.RoleEditor},
		{ProjectID: "p1", UserID: "u3", Role: models.RoleCommenter},
		{ProjectID: "p1", UserID: "u4", Role: models.RoleViewer},
	}}
}

func TestRoleShorthandComments(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{})
	got, err := r.Resolve(context.Background(), StrategyRole, CategoryComments, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u3"}, got)
}

func TestRoleShorthandMessages(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{})
	got, err := r.Resolve(context.Background(), StrategyRole, CategoryMessages, "p1", "u3", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u2"}, got)
}

func TestRoleShorthandTaskCategories(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{})
	for _, cat := range []Category{CategoryTasksAdded, CategoryTaskUpdates} {
		got, err := r.Resolve(context.Background(), StrategyRole, cat, "p1", "u1", nil)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"u2"}, got, "category %s", cat)
	}
}

func TestMatrixDefaultsTasksAdded(t *testing.T) {
	prefs := &fakePrefs{matrix: models.DefaultRoleMatrix()}
	r := NewResolver(projectRoles(), prefs)
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryTasksAdded, "p1", "u1", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u2"}, got)
}

func TestMatrixCommenterGetsComments(t *testing.T) {
	prefs := &fakePrefs{matrix: models.DefaultRoleMatrix()}
	r := NewResolver(projectRoles(), prefs)
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryComments, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u3"}, got)
}

func TestMatrixNotifyAllOverridesDisabledCategory(t *testing.T) {
	// Everything switched off; the notify-all admin still receives.
	matrix := models.RoleMatrix{
		models.RoleAdmin:     {},
		models.RoleEditor:    {},
		models.RoleCommenter: {},
		models.RoleViewer:    {},
	}
	r := NewResolver(projectRoles(), &fakePrefs{matrix: matrix})
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryMessages, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1"}, got)
}

func TestActorNeverIncluded(t *testing.T) {
	prefs := &fakePrefs{matrix: models.DefaultRoleMatrix()}
	r := NewResolver(projectRoles(), prefs)
	for _, actor := range []string{"u1", "u2", "u3", "u4"} {
		got, err := r.Resolve(context.Background(), StrategyPreference, CategoryComments, "p1", actor, nil)
		require.NoError(t, err)
		require.NotContains(t, got, actor)
	}
}

func TestDirectAddressingIgnoresRoles(t *testing.T) {
	prefs := &fakePrefs{matrix: models.DefaultRoleMatrix()}
	r := NewResolver(projectRoles(), prefs)

	// A viewer is a perfectly valid mention target.
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryTaskMentioned, "p1", "u2", []string{"u4"})
	require.NoError(t, err)
	require.Equal(t, []string{"u4"}, got)

	// Nobody sneaks in beyond the explicit targets.
	got, err = r.Resolve(context.Background(), StrategyPreference, CategoryTaskAssigned, "p1", "u1", []string{"u3"})
	require.NoError(t, err)
	require.Equal(t, []string{"u3"}, got)
}

func TestDirectAddressingEmptyTargets(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{matrix: models.DefaultRoleMatrix()})
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryTaskAssigned, "p1", "u1", nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDirectAddressingDeduplicates(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{})
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryTaskMentioned, "p1", "u1", []string{"u4", "u4", "u3"})
	require.NoError(t, err)
	require.Equal(t, []string{"u4", "u3"}, got)
}

func TestMissingPreferencesFailClosed(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{})
	for _, cat := range []Category{CategoryTasksAdded, CategoryTaskUpdates, CategoryComments, CategoryMessages} {
		got, err := r.Resolve(context.Background(), StrategyPreference, cat, "p1", "u9", nil)
		require.NoError(t, err)
		require.Empty(t, got, "category %s must fail closed", cat)
	}
	// The shorthand path is unaffected by missing settings.
	got, err := r.Resolve(context.Background(), StrategyRole, CategoryComments, "p1", "u9", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u3"}, got)
}

func TestAllowListSelection(t *testing.T) {
	prefs := &fakePrefs{lists: &models.AllowLists{
		ProjectID:     "p1",
		StatusUpdates: []string{"u3"},
		TasksAdded:    []string{"u2"},
		Messages:      []string{},
		Comments:      []string{"u4"},
	}}
	r := NewResolver(projectRoles(), prefs)

	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryTaskUpdates, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u3", "u1"}, got)

	got, err = r.Resolve(context.Background(), StrategyPreference, CategoryComments, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u4", "u1"}, got)

	// Empty set plus the notify-all admin.
	got, err = r.Resolve(context.Background(), StrategyPreference, CategoryMessages, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1"}, got)
}

func TestPerUserRecords(t *testing.T) {
	prefs := &fakePrefs{userPrefs: map[string]*models.UserPreference{
		"u3": {UserID: "u3", ProjectID: "p1", Comments: true},
		"u4": {UserID: "u4", ProjectID: "p1"},
	}}
	r := NewResolver(projectRoles(), prefs)
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryComments, "p1", "u2", nil)
	require.NoError(t, err)
	// u3 opted in, u4 has a record with comments off, u1 rides notify-all.
	require.ElementsMatch(t, []string{"u1", "u3"}, got)
}

func TestMutePerSender(t *testing.T) {
	prefs := &fakePrefs{userPrefs: map[string]*models.UserPreference{
		"u3": {
			UserID: "u3", ProjectID: "p1", Comments: true,
			TeamMemberPreferences: []models.TeamMemberPreference{
				{MemberID: "u2", ReceiveNotifications: false},
			},
		},
	}}
	r := NewResolver(projectRoles(), prefs)

	// u3 muted u2: u2's comment never reaches u3.
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryComments, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1"}, got)

	// The same comment from u4 does.
	got, err = r.Resolve(context.Background(), StrategyPreference, CategoryComments, "p1", "u4", nil)
	require.NoError(t, err)
	require.Contains(t, got, "u3")
}

func TestMuteAppliesToShorthandPath(t *testing.T) {
	prefs := &fakePrefs{userPrefs: map[string]*models.UserPreference{
		"u3": {
			UserID: "u3", ProjectID: "p1",
			TeamMemberPreferences: []models.TeamMemberPreference{
				{MemberID: "u2", ReceiveNotifications: false},
			},
		},
	}}
	r := NewResolver(projectRoles(), prefs)
	got, err := r.Resolve(context.Background(), StrategyRole, CategoryComments, "p1", "u2", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1"}, got)
}

func TestAdminOnly(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{})
	got, err := r.Resolve(context.Background(), StrategyPreference, CategoryAdminOnly, "p1", "u2", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, got)

	// An admin without notify-all does not qualify.
	roles := &fakeRoles{assignments: []models.RoleAssignment{
		{ProjectID: "p1", UserID: "u5", Role: models.RoleAdmin},
	}}
	r = NewResolver(roles, &fakePrefs{})
	got, err = r.Resolve(context.Background(), StrategyPreference, CategoryAdminOnly, "p1", "u2", nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRoleStoreErrorAborts(t *testing.T) {
	roles := &fakeRoles{err: errors.New("store down")}
	r := NewResolver(roles, &fakePrefs{})
	_, err := r.Resolve(context.Background(), StrategyPreference, CategoryTasksAdded, "p1", "u1", nil)
	require.Error(t, err)
	_, err = r.Resolve(context.Background(), StrategyRole, CategoryComments, "p1", "u1", nil)
	require.Error(t, err)
}

func TestPreferenceStoreErrorAborts(t *testing.T) {
	prefs := &fakePrefs{err: errors.New("store down")}
	r := NewResolver(projectRoles(), prefs)
	_, err := r.Resolve(context.Background(), StrategyPreference, CategoryMessages, "p1", "u1", nil)
	require.Error(t, err)
}

func TestUnknownCategoryRejected(t *testing.T) {
	r := NewResolver(projectRoles(), &fakePrefs{})
	_, err := r.Resolve(context.Background(), StrategyPreference, Category("bogus"), "p1", "u1", nil)
	require.Error(t, err)
}
