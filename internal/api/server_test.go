package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
	"github.com/fidelzky-bot/projectmanagerapp/internal/notification"
	"github.com/fidelzky-bot/projectmanagerapp/internal/repository"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type fakeNotifier struct {
	requests []notification.Request
}

func (f *fakeNotifier) Notify(_ context.Context, req notification.Request) ([]*models.Notification, error) {
	f.requests = append(f.requests, req)
	return nil, nil
}

type fakeBroadcaster struct {
	rooms []string
}

func (f *fakeBroadcaster) PushToUser(string, any) error { return nil }
func (f *fakeBroadcaster) BroadcastRoom(room string, _ any) error {
	f.rooms = append(f.rooms, room)
	return nil
}

type fakeNotifStore struct {
	byUser     map[string][]models.Notification
	markedAll  []string
	markReadID string
}

func (f *fakeNotifStore) ListForUser(_ context.Context, userID string) ([]models.Notification, error) {
	return f.byUser[userID], nil
}

func (f *fakeNotifStore) MarkRead(_ context.Context, id, userID string) (*models.Notification, error) {
	for _, n := range f.byUser[userID] {
		if n.ID.Hex() == id {
			n.Read = true
			f.markReadID = id
			return &n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeNotifStore) MarkAllRead(_ context.Context, userID string) (int64, error) {
	f.markedAll = append(f.markedAll, userID)
	return int64(len(f.byUser[userID])), nil
}

type fakeTaskStore struct {
	created []*models.Task
}

func (f *fakeTaskStore) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	f.created = append(f.created, task)
	return task, nil
}

func (f *fakeTaskStore) List(context.Context, string) ([]models.Task, error) { return nil, nil }
func (f *fakeTaskStore) GetByID(context.Context, string) (*models.Task, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeTaskStore) Update(context.Context, string, *models.Task) (*models.Task, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeTaskStore) Delete(context.Context, string) (*models.Task, error) {
	return nil, repository.ErrNotFound
}

type fakeProjectStore struct {
	projects map[string]*models.Project
}

func (f *fakeProjectStore) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	return p, nil
}
func (f *fakeProjectStore) List(context.Context) ([]models.Project, error) { return nil, nil }
func (f *fakeProjectStore) GetByID(_ context.Context, id string) (*models.Project, error) {
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeProjectStore) Delete(context.Context, string) error { return nil }

type fakeRoleStore struct {
	assignments map[string]models.RoleAssignment // key userID
}

func (f *fakeRoleStore) ListRoles(context.Context, string) ([]models.RoleAssignment, error) {
	return nil, nil
}

func (f *fakeRoleStore) GetRole(_ context.Context, _, userID string) (*models.RoleAssignment, error) {
	if a, ok := f.assignments[userID]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeRoleStore) SetRole(_ context.Context, a models.RoleAssignment) (*models.RoleAssignment, error) {
	f.assignments[a.UserID] = a
	return &a, nil
}

func (f *fakeRoleStore) RemoveRole(context.Context, string, string) error { return nil }

type fakePresence struct {
	byUser map[string]map[string]any
}

func (f *fakePresence) GetPresence(_ context.Context, userID string) (map[string]any, error) {
	if p, ok := f.byUser[userID]; ok {
		return p, nil
	}
	return map[string]any{"status": "offline"}, nil
}

type testEnv struct {
	app        *fiber.App
	notifier   *fakeNotifier
	broadcasts *fakeBroadcaster
	notifs     *fakeNotifStore
	tasks      *fakeTaskStore
	roles      *fakeRoleStore
	presence   *fakePresence
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		notifier:   &fakeNotifier{},
		broadcasts: &fakeBroadcaster{},
		notifs:     &fakeNotifStore{byUser: map[string][]models.Notification{}},
		tasks:      &fakeTaskStore{},
		roles:      &fakeRoleStore{assignments: map[string]models.RoleAssignment{}},
		presence:   &fakePresence{byUser: map[string]map[string]any{}},
	}
	env.app = New(Deps{
		Log:        zap.NewNop().Sugar(),
		JWTSecret:  testSecret,
		Dispatcher: env.notifier,
		Hub:        env.broadcasts,
		Tasks:      env.tasks,
		Notifs:     env.notifs,
		Roles:      env.roles,
		Presence:   env.presence,
		Projects: &fakeProjectStore{projects: map[string]*models.Project{
			"p1": {Name: "Apollo"},
		}},
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListNotificationsScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	env.notifs.byUser["u1"] = []models.Notification{
		{ID: primitive.NewObjectID(), User: "u1", Type: "comments", Message: "hi"},
	}
	env.notifs.byUser["u2"] = []models.Notification{
		{ID: primitive.NewObjectID(), User: "u2", Type: "comments", Message: "not yours"},
	}

	resp := env.do(t, http.MethodGet, "/api/notifications", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []models.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	require.Equal(t, "u1", got[0].User)
}

func TestMarkAllReadUsesCallerIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.notifs.byUser["u1"] = []models.Notification{{User: "u1"}, {User: "u1"}}

	resp := env.do(t, http.MethodPatch, "/api/notifications/read-all", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"u1"}, env.notifs.markedAll)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, int64(2), body["updated"])
}

func TestMarkReadLeavesForeignNotificationUntouched(t *testing.T) {
	env := newTestEnv(t)
	id := primitive.NewObjectID()
	env.notifs.byUser["u2"] = []models.Notification{{ID: id, User: "u2"}}

	// Another user's record reads as missing and, crucially, is never
	// flipped to read by the attempt.
	resp := env.do(t, http.MethodPatch, "/api/notifications/"+id.Hex()+"/read", "u1", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Empty(t, env.notifs.markReadID)

	resp = env.do(t, http.MethodPatch, "/api/notifications/"+id.Hex()+"/read", "u2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, id.Hex(), env.notifs.markReadID)
}

func TestCreateTaskDispatchesFanOut(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/tasks", "u1", fiber.Map{
		"title":      "Ship it",
		"project":    "p1",
		"assignedTo": "u2",
		"mentions":   []string{"u3"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, env.tasks.created, 1)

	// One broadcast to the project room, three dispatches: the tasksAdded
	// fan-out plus direct assignment and mention.
	require.Equal(t, []string{repository.ProjectRoomPrefix + "p1"}, env.broadcasts.rooms)
	require.Len(t, env.notifier.requests, 3)

	added := env.notifier.requests[0]
	require.Equal(t, notification.CategoryTasksAdded, added.Category)
	require.Equal(t, "u1", added.ActorID)
	require.Equal(t, "Apollo", added.Extra.ProjectName)

	assigned := env.notifier.requests[1]
	require.Equal(t, notification.CategoryTaskAssigned, assigned.Category)
	require.Equal(t, []string{"u2"}, assigned.Targets)

	mentioned := env.notifier.requests[2]
	require.Equal(t, notification.CategoryTaskMentioned, mentioned.Category)
	require.Equal(t, []string{"u3"}, mentioned.Targets)
}

func TestGetRoleDefaultsToViewer(t *testing.T) {
	env := newTestEnv(t)
	env.roles.assignments["u2"] = models.RoleAssignment{ProjectID: "p1", UserID: "u2", Role: models.RoleEditor}

	resp := env.do(t, http.MethodGet, "/api/projects/p1/roles/u2", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.RoleAssignment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, models.RoleEditor, got.Role)

	resp = env.do(t, http.MethodGet, "/api/projects/p1/roles/u9", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, models.DefaultRole, got.Role)
	require.False(t, got.NotifyAll)
}

func TestUserPresence(t *testing.T) {
	env := newTestEnv(t)
	env.presence.byUser["u2"] = map[string]any{"status": "online"}

	resp := env.do(t, http.MethodGet, "/api/users/u2/presence", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "online", got["status"])

	resp = env.do(t, http.MethodGet, "/api/users/u9/presence", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "offline", got["status"])
}

func TestUserPresenceDisabled(t *testing.T) {
	app := New(Deps{
		Log:       zap.NewNop().Sugar(),
		JWTSecret: testSecret,
	})
	req := httptest.NewRequest(http.MethodGet, "/api/users/u1/presence", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRateLimitExceeded(t *testing.T) {
	notifs := &fakeNotifStore{byUser: map[string][]models.Notification{}}
	app := New(Deps{
		Log:            zap.NewNop().Sugar(),
		JWTSecret:      testSecret,
		Notifs:         notifs,
		RateLimitRPS:   0.001,
		RateLimitBurst: 2,
	})
	token := signToken(t, "u1")
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestCreateTaskUnknownProjectRejected(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/tasks", "u1", fiber.Map{
		"title":   "Orphan",
		"project": "nope",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, env.notifier.requests)
}
