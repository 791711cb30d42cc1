package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix  = "session:"
	userSessionPrefix = "user_sessions:"
)

// SessionStore is the Redis-backed session registry. A session is active
// while its key exists; logout and account deletion remove keys, and TTL
// expiry handles abandoned sessions. A per-user set tracks session ids
// so all of a user's sessions can be revoked at once.
type SessionStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionStore creates a new session store
func NewSessionStore(client *redis.Client, logger *zap.Logger) outbound.SessionStore {
	return &SessionStore{
		client: client,
		logger: logger.Named("session-store"),
	}
}

// Register records a newly issued session with the given TTL.
func (s *SessionStore) Register(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sessionID), userID.String(), ttl)
	pipe.SAdd(ctx, userSessionsKey(userID), sessionID)
	// The set must outlive the longest session it references.
	pipe.Expire(ctx, userSessionsKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}
	return nil
}

// IsActive reports whether the session has been registered and not revoked.
func (s *SessionStore) IsActive(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}

// Revoke removes a single session.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string, userID uuid.UUID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSessionsKey(userID), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser removes every session registered for the user.
func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	sessionIDs, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	keys := make([]string, 0, len(sessionIDs)+1)
	for _, id := range sessionIDs {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	s.logger.Info("revoked all sessions for user",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(sessionIDs)),
	)
	return nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func userSessionsKey(userID uuid.UUID) string {
	return userSessionPrefix + userID.String()
}
