package domain

import (
	"context"
	"time"
)

// Cache is a best-effort projection of short code -> original URL.
// Get and Set never fail from the caller's point of view: any backend
// error is reported as a miss or dropped.
type Cache interface {
	// Get returns the cached original URL and whether it was found
	Get(ctx context.Context, code string) (string, bool)

	// Set stores the original URL for the code with the given TTL
	Set(ctx context.Context, code, originalURL string, ttl time.Duration)

	// Ping checks if the cache is available
	Ping(ctx context.Context) error
}
