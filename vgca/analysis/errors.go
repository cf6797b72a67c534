package analysis

import (
	"context"
	"errors"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/fetch"
)

// UserMessage maps a pipeline error onto the one line shown to the user.
// Each failure class gets a distinct remedy: wait for rate limits, fix
// settings for config errors, try another source for fetch errors. Input
// validation errors are already phrased for users and pass through.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "analysis canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "analysis timed out: try again"
	}

	var emptyErr *fetch.EmptyContentError
	if errors.As(err, &emptyErr) {
		return "the page responded but no article text could be extracted from it"
	}

	var fetchErr *fetch.FetchError
	if errors.As(err, &fetchErr) {
		return "could not fetch the article: " + fetchErr.Err.Error()
	}

	var completionErr *ports.CompletionError
	if errors.As(err, &completionErr) {
		switch completionErr.Kind {
		case ports.CompletionRateLimited:
			return "the completion service is rate limited: wait a moment and retry"
		case ports.CompletionConfig:
			return "the completion request was rejected: check the api key and model settings"
		default:
			return "the completion service is unavailable and retries were exhausted: try again later"
		}
	}

	return err.Error()
}
