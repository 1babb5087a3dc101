package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// SessionStore implements ports.SessionStore using Redis.
// One key per account holds the id of its most recent channel.
type SessionStore struct {
	client *goredis.Client
	prefix string
}

// NewSessionStore creates a new Redis-backed session store.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:channel:",
	}
}

// SetChannel records channelID as the account's current channel.
// A later call overwrites the previous value.
func (s *SessionStore) SetChannel(ctx context.Context, accountID, channelID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+accountID.String(), channelID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	return nil
}

// GetChannel returns the account's current channel, or uuid.Nil.
func (s *SessionStore) GetChannel(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.prefix+accountID.String()).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("redis session get: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("redis session value: %w", err)
	}
	return id, nil
}

// ClearChannel drops the account's current channel. Deleting a missing key
// is not an error.
func (s *SessionStore) ClearChannel(ctx context.Context, accountID uuid.UUID) error {
	if err := s.client.Del(ctx, s.prefix+accountID.String()).Err(); err != nil {
		return fmt.Errorf("redis session clear: %w", err)
	}
	return nil
}
