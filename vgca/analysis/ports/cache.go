package analysisports

import (
	"context"
	"time"
)

// Entry describes one cached result for inspection.
type Entry struct {
	Key       string
	Size      int
	StoredAt  time.Time
	Age       time.Duration
	Remaining time.Duration // until TTL expiry; never negative
}

// CacheStats summarizes cache occupancy for the admin surface. Expired
// entries are those past their TTL that no lookup has evicted yet.
type CacheStats struct {
	TotalEntries   int
	ValidEntries   int
	ExpiredEntries int
	TotalBytes     int
}

// Cache memoizes parsed analysis results by source key. Entries expire
// after their TTL and are evicted lazily at the next lookup. Concurrent
// reads and writes to distinct keys must be safe; concurrent writes to
// the same key may race and last write wins.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Entries(ctx context.Context) []Entry
	Stats(ctx context.Context) CacheStats
	Clear(ctx context.Context) error
}
