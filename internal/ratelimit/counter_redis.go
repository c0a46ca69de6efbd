package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mediagate/mediagate/pkg/gateerrors"
)

// RedisCounter is a windowed counter backed by Redis, shared by every
// gateway instance pointed at the same server.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter wraps an existing Redis client as a counter store.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Increment adds amount to the counter at key and returns the new
// value. The key expires windowSeconds after its first increment, so
// the count resets when the window rolls over.
func (c *RedisCounter) Increment(ctx context.Context, key string, amount, windowSeconds int64) (int64, error) {
	pipe := c.client.Pipeline()
	incr := pipe.IncrBy(ctx, key, amount)
	pipe.ExpireNX(ctx, key, time.Duration(windowSeconds)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, gateerrors.Wrap(err, gateerrors.ErrCodeStoreUnavailable, "counter increment failed").
			WithComponent("ratelimit").WithOperation("Increment")
	}

	return incr.Val(), nil
}

// Ping checks connectivity to the Redis server.
func (c *RedisCounter) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return gateerrors.Wrap(err, gateerrors.ErrCodeStoreUnavailable, "redis ping failed").
			WithComponent("ratelimit").WithOperation("Ping")
	}
	return nil
}
