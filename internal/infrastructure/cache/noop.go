package cache

import (
	"context"
	"time"
)

// NoOpCache is a no-operation cache implementation that does nothing
// Used when caching is disabled
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(_ context.Context, _ string) (string, bool) {
	return "", false
}

func (c *NoOpCache) Set(_ context.Context, _, _ string, _ time.Duration) {}

func (c *NoOpCache) Ping(_ context.Context) error {
	return nil
}
