package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
	"github.com/fidelzky-bot/projectmanagerapp/internal/notification"
)

// Notifier is the single fan-out entry point every action handler calls
// instead of doing ad-hoc delivery.
type Notifier interface {
	Notify(ctx context.Context, req notification.Request) ([]*models.Notification, error)
}

// Broadcaster exposes the realtime channel to handlers: targeted personal
// pushes and team/project room broadcasts.
type Broadcaster interface {
	PushToUser(userID string, payload any) error
	BroadcastRoom(room string, payload any) error
}

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	List(ctx context.Context, projectID string) ([]models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, id string, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) (*models.Task, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	ListByTask(ctx context.Context, taskID string) ([]models.Comment, error)
	Delete(ctx context.Context, id string) error
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	ListByProject(ctx context.Context, projectID string, limit int64) ([]models.Message, error)
	MarkRead(ctx context.Context, projectID, userID string) (int64, error)
	UnreadCount(ctx context.Context, projectID, userID string) (int64, error)
}

type NotificationStore interface {
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type RoleStore interface {
	ListRoles(ctx context.Context, projectID string) ([]models.RoleAssignment, error)
	GetRole(ctx context.Context, projectID, userID string) (*models.RoleAssignment, error)
	SetRole(ctx context.Context, a models.RoleAssignment) (*models.RoleAssignment, error)
	RemoveRole(ctx context.Context, projectID, userID string) error
}

// PresenceReader exposes a user's online status. Optional; nil when presence
// tracking is disabled.
type PresenceReader interface {
	GetPresence(ctx context.Context, userID string) (map[string]any, error)
}

type SettingsStore interface {
	GetOrCreateAllowLists(ctx context.Context, projectID string) (*models.AllowLists, error)
	UpsertAllowLists(ctx context.Context, lists *models.AllowLists) (*models.AllowLists, error)
	UpsertUserPreference(ctx context.Context, pref *models.UserPreference) (*models.UserPreference, error)
}

type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

type TeamStore interface {
	Create(ctx context.Context, t *models.Team) (*models.Team, error)
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListForUser(ctx context.Context, userID string) ([]models.Team, error)
	AddMember(ctx context.Context, teamID, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type AttachmentStore interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	ListByTask(ctx context.Context, taskID string) ([]models.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// Deps wires the server. Everything is injected so handlers stay testable
// and nothing reaches into globals.
type Deps struct {
	Log         *zap.SugaredLogger
	JWTSecret   string
	Dispatcher  Notifier
	Hub         Broadcaster
	WSHandler   func(*websocket.Conn)
	Tasks       TaskStore
	Comments    CommentStore
	Messages    MessageStore
	Notifs      NotificationStore
	Roles       RoleStore
	Settings    SettingsStore
	Projects    ProjectStore
	Teams       TeamStore
	Users       UserStore
	Attachments AttachmentStore
	Presence    PresenceReader

	// Per-client request budget for the /api group; zero values take the
	// defaults.
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	log         *zap.SugaredLogger
	dispatcher  Notifier
	hub         Broadcaster
	tasks       TaskStore
	comments    CommentStore
	messages    MessageStore
	notifs      NotificationStore
	roles       RoleStore
	settings    SettingsStore
	projects    ProjectStore
	teams       TeamStore
	users       UserStore
	attachments AttachmentStore
	presence    PresenceReader
}

// New builds the fiber app with all routes registered.
func New(d Deps) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	if d.RateLimitRPS == 0 {
		d.RateLimitRPS = 20
	}
	if d.RateLimitBurst == 0 {
		d.RateLimitBurst = 40
	}

	s := &Server{
		log:         d.Log,
		dispatcher:  d.Dispatcher,
		hub:         d.Hub,
		tasks:       d.Tasks,
		comments:    d.Comments,
		messages:    d.Messages,
		notifs:      d.Notifs,
		roles:       d.Roles,
		settings:    d.Settings,
		projects:    d.Projects,
		teams:       d.Teams,
		users:       d.Users,
		attachments: d.Attachments,
		presence:    d.Presence,
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if d.WSHandler != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(d.WSHandler))
	}

	api := app.Group("/api", rateLimit(rate.Limit(d.RateLimitRPS), d.RateLimitBurst), auth.Middleware(d.JWTSecret))

	api.Post("/tasks", s.createTask)
	api.Get("/tasks", s.listTasks)
	api.Get("/tasks/:id", s.getTask)
	api.Put("/tasks/:id", s.updateTask)
	api.Delete("/tasks/:id", s.deleteTask)
	api.Get("/tasks/:id/attachments", s.listAttachments)

	api.Post("/comments", s.createComment)
	api.Get("/comments", s.listComments)
	api.Delete("/comments/:id", s.deleteComment)

	api.Post("/messages", s.sendMessage)
	api.Get("/projects/:projectId/messages", s.listMessages)
	api.Post("/projects/:projectId/messages/read", s.markMessagesRead)
	api.Get("/projects/:projectId/messages/unread-count", s.unreadMessageCount)

	api.Get("/notifications", s.listNotifications)
	api.Patch("/notifications/read-all", s.markAllNotificationsRead)
	api.Patch("/notifications/:id/read", s.markNotificationRead)

	api.Get("/projects/:projectId/roles", s.listRoles)
	api.Get("/projects/:projectId/roles/:userId", s.getRole)
	api.Put("/projects/:projectId/roles", s.setRole)
	api.Delete("/projects/:projectId/roles/:userId", s.removeRole)

	api.Get("/projects/:projectId/notification-settings", s.getSettings)
	api.Put("/projects/:projectId/notification-settings", s.updateSettings)
	api.Put("/projects/:projectId/notification-settings/me", s.updateUserPreference)

	api.Post("/projects", s.createProject)
	api.Get("/projects", s.listProjects)
	api.Get("/projects/:projectId", s.getProject)
	api.Delete("/projects/:projectId", s.deleteProject)

	api.Post("/teams", s.createTeam)
	api.Get("/teams", s.listMyTeams)
	api.Post("/teams/:id/members", s.addTeamMember)
	api.Delete("/teams/:id/members/:userId", s.removeTeamMember)

	api.Get("/users", s.listUsers)
	api.Get("/users/:id", s.getUser)
	api.Get("/users/:id/presence", s.getUserPresence)

	api.Post("/attachments", s.createAttachment)
	api.Delete("/attachments/:id", s.deleteAttachment)

	return app
}

// event wraps a payload in the realtime envelope shape.
func event(eventType string, payload any) fiber.Map {
	return fiber.Map{"type": eventType, "payload": payload}
}
