package ws

import (
	"encoding/json"
	"sync"
)

// Realtime event types shared with the REST handlers.
const (
	EventTaskUpdated       = "task:updated"
	EventCommentNew        = "comment:new"
	EventMessageNew        = "message:new"
	EventMembershipChanged = "membership:changed"
)

// Envelope is the JSON frame exchanged over a connection.
type Envelope struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Hub is the process-wide session registry. Every identified connection
// belongs to exactly one personal registry entry (its user ID) and
// zero-or-more team/project rooms. Mutated only on connect, join and
// disconnect; guarded by a lock because pushes run on arbitrary goroutines.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]map[*Client]struct{}
	byRoom map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		byUser: make(map[string]map[*Client]struct{}),
		byRoom: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a client under its user identity. Delivery to that user
// reaches every registered connection, so multi-device comes for free.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byUser[c.UserID]; !ok {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

// Unregister drops the client from its user entry and from every room.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.byUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	for room, set := range h.byRoom {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byRoom, room)
		}
	}
}

func (h *Hub) JoinRoom(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.byRoom[room]; !ok {
		h.byRoom[room] = make(map[*Client]struct{})
	}
	h.byRoom[room][c] = struct{}{}
}

// LeaveRooms removes the client from every team/project room but keeps its
// personal registration, so a rejoin handshake can rebuild membership
// without dropping notification delivery.
func (h *Hub) LeaveRooms(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, set := range h.byRoom {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byRoom, room)
		}
	}
}

// PushToUser delivers a payload to every live connection of one user.
// Never a broadcast: only sessions registered under this identity see it.
func (h *Hub) PushToUser(userID string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		c.enqueue(b)
	}
	return nil
}

// BroadcastRoom delivers a payload to every connection joined to a
// team/project room.
func (h *Hub) BroadcastRoom(room string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byRoom[room] {
		c.enqueue(b)
	}
	return nil
}

// Connections reports how many live connections a user has.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}
