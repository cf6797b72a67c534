package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/fetch"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "canceled",
			err:  fmt.Errorf("provider call: %w", context.Canceled),
			want: "analysis canceled",
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: "analysis timed out: try again",
		},
		{
			name: "empty content",
			err:  &fetch.EmptyContentError{URL: "https://example.jp/a"},
			want: "the page responded but no article text could be extracted from it",
		},
		{
			name: "fetch failure",
			err:  &fetch.FetchError{URL: "https://example.jp/a", Err: errors.New("status 403")},
			want: "could not fetch the article: status 403",
		},
		{
			name: "rate limited",
			err:  &ports.CompletionError{Kind: ports.CompletionRateLimited, Err: errors.New("bucket empty")},
			want: "the completion service is rate limited: wait a moment and retry",
		},
		{
			name: "config rejection",
			err:  &ports.CompletionError{Kind: ports.CompletionConfig, Err: errors.New("401")},
			want: "the completion request was rejected: check the api key and model settings",
		},
		{
			name: "transient exhausted",
			err:  &ports.CompletionError{Kind: ports.CompletionTransient, Err: errors.New("503")},
			want: "the completion service is unavailable and retries were exhausted: try again later",
		},
		{
			name: "guard errors pass through",
			err:  ErrInputTooShort,
			want: ErrInputTooShort.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
