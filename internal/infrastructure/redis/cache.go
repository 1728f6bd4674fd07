package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "url:"

// RedisCache maps short codes to original URLs. Every command runs under
// opTimeout and every failure is logged at debug level and reported as a
// miss, so an unreachable Redis only costs latency.
type RedisCache struct {
	client    redis.UniversalClient
	logger    *slog.Logger
	opTimeout time.Duration
}

func NewRedisCache(client redis.UniversalClient, logger *slog.Logger, opTimeout time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

func (c *RedisCache) Get(ctx context.Context, code string) (string, bool) {
	key := buildKey(code)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("Cache get failed, treating as miss", "key", key, "error", err)
		}
		return "", false
	}

	return val, true
}

func (c *RedisCache) Set(ctx context.Context, code, originalURL string, ttl time.Duration) {
	key := buildKey(code)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(ctx, key, originalURL, ttl).Err(); err != nil {
		c.logger.Debug("Cache set failed, skipping", "key", key, "error", err)
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// withTimeout bounds a cache call. The caller's own deadline still applies
// when it is shorter.
func (c *RedisCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

func buildKey(code string) string {
	return keyPrefix + code
}
