package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fidelzky-bot/projectmanagerapp/internal/models"
)

// EventNotificationNew is the realtime event type carried to a recipient's
// personal room.
const EventNotificationNew = "notification:new"

// NotificationStore persists fan-out records.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
}

// Pusher delivers a payload to every live connection of one user. Delivery
// is best-effort; the persisted record remains readable via fetch.
type Pusher interface {
	PushToUser(userID string, payload any) error
}

// EventPublisher mirrors dispatched notifications onto the domain event
// stream for downstream consumers. Optional and best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Extra carries the optional action-specific display fields attached
// verbatim to every created record.
type Extra struct {
	TaskTitle   string
	Title       string
	ProjectName string
	NewRole     string
}

// Request describes one triggering action.
type Request struct {
	Category   Category
	Strategy   Strategy // defaults to StrategyPreference
	ProjectID  string
	ActorID    string
	Targets    []string // only read for direct-addressing categories
	Kind       string   // optional finer task-update kind, used as record type
	Message    string
	EntityID   string
	EntityType string
	Extra      Extra
}

type pushEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Dispatcher is the single entry point action handlers use instead of
// ad-hoc delivery: it resolves recipients, persists one record each, and
// pushes to each recipient's personal room.
type Dispatcher struct {
	resolver *Resolver
	store    NotificationStore
	pusher   Pusher
	events   EventPublisher
	log      *zap.SugaredLogger
}

func NewDispatcher(resolver *Resolver, store NotificationStore, pusher Pusher, events EventPublisher, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{resolver: resolver, store: store, pusher: pusher, events: events, log: log}
}

// Notify fans one action out to its recipients. A role/preference lookup
// failure aborts the whole dispatch before anything is written. After
// resolution, failures are per-recipient: a failed write skips that
// recipient and the rest proceed. Each push happens only after that
// recipient's row is durably created, so a client never sees a push
// without a fetchable record behind it.
//
// Calling Notify twice for the same logical action creates two rows per
// recipient. That is deliberate: deduplication across calls is the
// caller's concern, not the dispatcher's.
func (d *Dispatcher) Notify(ctx context.Context, req Request) ([]*models.Notification, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = StrategyPreference
	}
	recipients, err := d.resolver.Resolve(ctx, strategy, req.Category, req.ProjectID, req.ActorID, req.Targets)
	if err != nil {
		return nil, fmt.Errorf("resolve recipients: %w", err)
	}

	recordType := string(req.Category)
	if req.Kind != "" {
		recordType = req.Kind
	}

	created := make([]*models.Notification, 0, len(recipients))
	for _, uid := range recipients {
		n := &models.Notification{
			User:        uid,
			Sender:      req.ActorID,
			Type:        recordType,
			Message:     req.Message,
			EntityID:    req.EntityID,
			EntityType:  req.EntityType,
			TaskTitle:   req.Extra.TaskTitle,
			Title:       req.Extra.Title,
			ProjectName: req.Extra.ProjectName,
			NewRole:     req.Extra.NewRole,
		}
		persisted, err := d.store.Create(ctx, n)
		if err != nil {
			d.log.Warnw("notification persist failed, skipping recipient",
				"user", uid, "category", req.Category, "project", req.ProjectID, "error", err)
			continue
		}
		created = append(created, persisted)
		if err := d.pusher.PushToUser(uid, pushEvent{Type: EventNotificationNew, Payload: persisted}); err != nil {
			d.log.Warnw("realtime push failed, record remains fetchable",
				"user", uid, "notification", persisted.ID.Hex(), "error", err)
		}
	}

	if d.events != nil && len(created) > 0 {
		if err := d.events.Publish(ctx, "notification.created", map[string]any{
			"category":   string(req.Category),
			"project_id": req.ProjectID,
			"actor_id":   req.ActorID,
			"recipients": len(created),
		}); err != nil {
			d.log.Warnw("event publish failed", "category", req.Category, "error", err)
		}
	}
	return created, nil
}
