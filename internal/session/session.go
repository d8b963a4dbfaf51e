// Package session resolves login sessions to user ids. Tokens live in
// Redis with a TTL, so sessions survive restarts of this process and can
// be shared by several instances.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"goboard/internal/apperr"
)

const DefaultTTL = 24 * time.Hour

// Manager hands out opaque session tokens and maps them back to the user
// id they were issued for.
type Manager struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewManager connects to Redis at addr.
func NewManager(addr string, ttl time.Duration) (*Manager, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Manager{rdb: rdb, ttl: ttl}, nil
}

// Close releases the Redis connection.
func (m *Manager) Close() error {
	return m.rdb.Close()
}

// Create issues a fresh token for userID.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := m.rdb.Set(ctx, sessionKey(token), userID, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id the token was issued for and refreshes its
// TTL. Unknown or expired tokens fail with SessionNotFound.
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := m.rdb.GetEx(ctx, sessionKey(token), m.ttl).Result()
	if err == redis.Nil {
		return "", apperr.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return userID, nil
}

// Delete logs the token out. Deleting an unknown token is a no-op.
func (m *Manager) Delete(ctx context.Context, token string) error {
	if err := m.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
