package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const healthPingTimeout = 2 * time.Second

// HealthCheck reports whether the Redis server behind the session and
// rate-limit stores answers PING.
type HealthCheck struct {
	client  *goredis.Client
	timeout time.Duration
}

func NewHealthCheck(client *goredis.Client) *HealthCheck {
	return &HealthCheck{client: client, timeout: healthPingTimeout}
}

// Ping gives up after the check's timeout even when ctx has no deadline,
// so a hung server cannot stall /health.
func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}
