package analysisports

import "context"

// Tracer emits spans and events for observability.
type Tracer interface {
	// StartSpan begins a span; the returned finish func records the
	// span's outcome.
	StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error))
	// Event records a point-in-time observation within the current span.
	Event(ctx context.Context, name string, attrs map[string]any)
}
