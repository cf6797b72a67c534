package analysisports

import "context"

// RateLimiter coordinates throughput toward the completion service.
type RateLimiter interface {
	// Acquire blocks or errors per implementation policy and returns a
	// release func. Callers must call release exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
