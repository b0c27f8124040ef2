package limiter

import "context"

// RateLimiter decides whether a client may make another availability request
type RateLimiter interface {
	Allow(ctx context.Context, clientKey string) (bool, error)

	// Health check
	Ping(ctx context.Context) error
}
