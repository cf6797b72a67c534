package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_ExhaustsAndRefills(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	tb := NewTokenBucket(2, time.Second, clock)

	_, err := tb.Acquire(ctx, "analyze")
	require.NoError(t, err)
	_, err = tb.Acquire(ctx, "analyze")
	require.NoError(t, err)

	_, err = tb.Acquire(ctx, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")

	// One refill interval restores one token.
	clock.Advance(time.Second)
	_, err = tb.Acquire(ctx, "analyze")
	assert.NoError(t, err)
}

func TestTokenBucket_ReleaseReturnsToken(t *testing.T) {
	ctx := context.Background()
	tb := NewTokenBucket(1, time.Hour, newFakeClock())

	release, err := tb.Acquire(ctx, "analyze")
	require.NoError(t, err)

	_, err = tb.Acquire(ctx, "analyze")
	require.Error(t, err)

	release()
	_, err = tb.Acquire(ctx, "analyze")
	assert.NoError(t, err)
}

func TestTokenBucket_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	tb := NewTokenBucket(1, time.Hour, newFakeClock())

	_, err := tb.Acquire(ctx, "analyze")
	require.NoError(t, err)
	_, err = tb.Acquire(ctx, "analyze")
	require.Error(t, err)

	_, err = tb.Acquire(ctx, "cache")
	assert.NoError(t, err)
}

func TestTokenBucket_RefillNeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	tb := NewTokenBucket(2, time.Second, clock)

	_, err := tb.Acquire(ctx, "analyze")
	require.NoError(t, err)

	clock.Advance(time.Minute)

	for i := 0; i < 2; i++ {
		_, err = tb.Acquire(ctx, "analyze")
		require.NoError(t, err)
	}
	_, err = tb.Acquire(ctx, "analyze")
	assert.Error(t, err, "a long idle period must not bank more than capacity tokens")
}
