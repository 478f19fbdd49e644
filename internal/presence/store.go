package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps per-socket connection metadata and presence in Redis so
// other instances and the presence API can see who is online.
//
// Keys:
//   <prefix>:conn:<userID>     set of connection meta JSON
//   <prefix>:presence:<userID> JSON {status,last_seen}
type Store struct {
	client *redis.Client
	prefix string
}

type connMeta struct {
	SocketID    string `json:"socket_id"`
	ConnectedAt int64  `json:"connected_at"`
}

func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) connKey(userID string) string {
	return fmt.Sprintf("%s:conn:%s", s.prefix, userID)
}

func (s *Store) presenceKey(userID string) string {
	return fmt.Sprintf("%s:presence:%s", s.prefix, userID)
}

// AddConnection registers one socket and marks the user online.
func (s *Store) AddConnection(ctx context.Context, userID, socketID string, ttl time.Duration) error {
	meta, _ := json.Marshal(connMeta{SocketID: socketID, ConnectedAt: time.Now().Unix()})
	if err := s.client.SAdd(ctx, s.connKey(userID), meta).Err(); err != nil {
		return err
	}
	_ = s.client.Expire(ctx, s.connKey(userID), ttl).Err()
	pres, _ := json.Marshal(map[string]any{"status": "online", "last_seen": time.Now().Unix()})
	return s.client.Set(ctx, s.presenceKey(userID), pres, ttl).Err()
}

// RemoveConnection drops one socket; when it was the last, the user goes
// offline.
func (s *Store) RemoveConnection(ctx context.Context, userID, socketID string) error {
	key := s.connKey(userID)
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	for _, m := range members {
		var cm connMeta
		_ = json.Unmarshal([]byte(m), &cm)
		if cm.SocketID == socketID {
			_ = s.client.SRem(ctx, key, m).Err()
		}
	}
	cnt, _ := s.client.SCard(ctx, key).Result()
	if cnt == 0 {
		pres, _ := json.Marshal(map[string]any{"status": "offline", "last_seen": time.Now().Unix()})
		return s.client.Set(ctx, s.presenceKey(userID), pres, 0).Err()
	}
	return nil
}

// GetPresence returns the presence document for a user. A user who never
// connected reads as offline.
func (s *Store) GetPresence(ctx context.Context, userID string) (map[string]any, error) {
	b, err := s.client.Get(ctx, s.presenceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]any{"status": "offline"}, nil
	}
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
