// Package session manages the opaque session identifiers tied to logins.
// The authorization middleware only consumes Validator; the store side is
// used by the auth feature on login/logout.
package session

import (
	"context"
	"time"

	"go-pos/internal/database"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// TTL is the session lifetime; it mirrors the session_id cookie max-age.
const TTL = 12 * time.Hour

// Validator checks an opaque session identifier.
type Validator interface {
	Validate(ctx context.Context, sessionID string) (bool, error)
}

// Store keeps sessions in Redis keyed by their opaque identifier.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(rdb *database.RedisDB) *Store {
	return &Store{client: rdb.Client, ttl: TTL}
}

// Create opens a session for the user and returns its identifier.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(id), userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate reports whether the session exists and has not expired.
func (s *Store) Validate(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Destroy removes a session. Destroying an unknown session is not an error.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

func sessionKey(id string) string {
	return "session:" + id
}
