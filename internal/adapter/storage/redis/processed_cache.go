package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ProcessedCache implements ports.ProcessedCache using Redis.
// Entries are snapshots of settled transactions keyed by id.
type ProcessedCache struct {
	client *goredis.Client
	prefix string
}

// NewProcessedCache creates a new Redis-backed processed-transaction cache.
func NewProcessedCache(client *goredis.Client) *ProcessedCache {
	return &ProcessedCache{
		client: client,
		prefix: "processed:",
	}
}

// Get retrieves the cached snapshot of a processed transaction.
// Returns nil, nil if the key does not exist.
func (c *ProcessedCache) Get(ctx context.Context, transactionID uuid.UUID) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+transactionID.String()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis processed get: %w", err)
	}
	return val, nil
}

// Set stores the snapshot with TTL.
func (c *ProcessedCache) Set(ctx context.Context, transactionID uuid.UUID, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+transactionID.String(), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis processed set: %w", err)
	}
	return nil
}
