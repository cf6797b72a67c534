package analysisports

import (
	"context"
	"fmt"
)

// PromptInput carries one fully built prompt plus optional image payloads.
type PromptInput struct {
	Prompt string
	Images []ImagePayload
	Meta   map[string]string
}

// ImagePayload is raw image bytes with an explicit mime type.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// Options controls a single completion call.
type Options struct {
	MaxOutputTokens int
	Temperature     float32
	TopP            float32
	TimeoutMs       int
}

// Usage reports token accounting when the provider exposes it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the raw text outcome of one provider call.
type Completion struct {
	Text  string
	Raw   any
	Usage *Usage
}

// Provider abstracts the hosted text-completion service. Implementations
// own their retry policy: transient failures (rate limits, server errors,
// timeouts) are retried with bounded backoff inside Complete, and callers
// never retry on top.
type Provider interface {
	Complete(ctx context.Context, in PromptInput, opts Options) (Completion, error)
}

// CompletionErrorKind separates failures the user can wait out from
// failures they must fix.
type CompletionErrorKind string

const (
	// CompletionRateLimited means the service throttled us; trying again
	// later is the remedy.
	CompletionRateLimited CompletionErrorKind = "rate_limited"
	// CompletionTransient covers server errors and timeouts that
	// exhausted the retry budget.
	CompletionTransient CompletionErrorKind = "transient"
	// CompletionConfig covers bad credentials and malformed requests;
	// retrying cannot help.
	CompletionConfig CompletionErrorKind = "config"
)

// CompletionError is a classified provider failure.
type CompletionError struct {
	Kind     CompletionErrorKind
	Attempts int
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed (%s, %d attempts): %v", e.Kind, e.Attempts, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could succeed.
func (e *CompletionError) Retryable() bool {
	return e.Kind != CompletionConfig
}
