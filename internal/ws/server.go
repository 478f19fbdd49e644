package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fidelzky-bot/projectmanagerapp/internal/auth"
)

// RoomDirectory resolves which team/project rooms a user belongs to at
// join time. Membership is snapshotted then: if it changes while the
// connection lives, rooms go stale until the client runs the rejoin
// handshake (prompted by a membership:changed push).
type RoomDirectory interface {
	RoomsForUser(ctx context.Context, userID string) ([]string, error)
}

// PresenceStore records per-socket connection metadata for other
// instances and the presence API. Optional.
type PresenceStore interface {
	AddConnection(ctx context.Context, userID, socketID string, ttl time.Duration) error
	RemoveConnection(ctx context.Context, userID, socketID string) error
}

type Config struct {
	PingInterval   time.Duration
	WriteDeadline  time.Duration
	MaxMessageSize int64
	PresenceTTL    time.Duration
}

// Server owns the websocket handshake: validate the token, register the
// connection under its user identity and join its team/project rooms.
type Server struct {
	hub      *Hub
	rooms    RoomDirectory
	presence PresenceStore
	secret   string
	cfg      Config
	log      *zap.SugaredLogger
}

func NewServer(hub *Hub, rooms RoomDirectory, presence PresenceStore, secret string, cfg Config, log *zap.SugaredLogger) *Server {
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 25 * time.Second
	}
	if cfg.WriteDeadline == 0 {
		cfg.WriteDeadline = 10 * time.Second
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = 64 * 1024
	}
	if cfg.PresenceTTL == 0 {
		cfg.PresenceTTL = 24 * time.Hour
	}
	return &Server{hub: hub, rooms: rooms, presence: presence, secret: secret, cfg: cfg, log: log}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler upgrades /ws?token=<jwt>. State per connection: connected ->
// joined(identity) -> disconnected; a reconnecting client re-runs the
// whole handshake, nothing is resumed.
func (s *Server) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		token := conn.Query("token")
		if token == "" {
			_ = conn.Close()
			return
		}
		claims, err := auth.ParseAndValidate(s.secret, token)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"error":"invalid token"}}`))
			_ = conn.Close()
			return
		}

		client := newClient(conn, claims.UserID, uuid.New().String())
		s.hub.Register(client)
		s.joinRooms(client)
		if s.presence != nil {
			if err := s.presence.AddConnection(context.Background(), client.UserID, client.SocketID, s.cfg.PresenceTTL); err != nil {
				s.log.Warnw("presence add failed", "user", client.UserID, "error", err)
			}
		}
		s.log.Infow("client joined", "user", client.UserID, "socket", client.SocketID)

		go client.writePump(s.cfg.PingInterval, s.cfg.WriteDeadline)
		s.readLoop(client)

		s.hub.Unregister(client)
		if s.presence != nil {
			if err := s.presence.RemoveConnection(context.Background(), client.UserID, client.SocketID); err != nil {
				s.log.Warnw("presence remove failed", "user", client.UserID, "error", err)
			}
		}
		client.close()
		s.log.Infow("client left", "user", client.UserID, "socket", client.SocketID)
	}
}

func (s *Server) joinRooms(client *Client) {
	rooms, err := s.rooms.RoomsForUser(context.Background(), client.UserID)
	if err != nil {
		s.log.Warnw("room resolution failed, personal delivery only", "user", client.UserID, "error", err)
		return
	}
	for _, room := range rooms {
		s.hub.JoinRoom(client, room)
	}
}

func (s *Server) readLoop(client *Client) {
	conn := client.conn
	conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(2 * s.cfg.PingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * s.cfg.PingInterval))
	})
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		switch env.Type {
		case "rejoin":
			// Client re-runs room resolution after a membership change.
			s.hub.LeaveRooms(client)
			s.joinRooms(client)
		default:
			// Inbound application traffic goes through the REST API.
		}
	}
}
