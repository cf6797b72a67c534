// Package adapters provides the concrete implementations behind the
// analysis ports: the in-memory result cache, the token bucket rate
// limiter, the zerolog tracer, the libsql history store and the Gemini
// completion provider.
package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
)

// MemoryCache is an unbounded in-memory cache with per-entry TTL. Expired
// entries are evicted lazily by the lookup that finds them stale, never
// proactively; unbounded growth over a process lifetime is an accepted
// property of this low-traffic tool.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*cacheItem
	clock ports.Clock
}

type cacheItem struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

func (i *cacheItem) expiresAt() time.Time { return i.storedAt.Add(i.ttl) }

// NewMemoryCache creates a cache reading time from clock. A nil clock
// selects the system clock.
func NewMemoryCache(clock ports.Clock) *MemoryCache {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &MemoryCache{
		items: make(map[string]*cacheItem),
		clock: clock,
	}
}

// Get returns the value stored under key while it is fresh. A stale entry
// is removed on the spot and reported as a miss.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	if exists && c.clock.Now().Before(item.expiresAt()) {
		value := item.value
		c.mu.RUnlock()
		return value, true
	}
	c.mu.RUnlock()
	if !exists {
		return nil, false
	}

	// Lazy eviction; re-check under the write lock because another
	// writer may have replaced the entry meanwhile.
	c.mu.Lock()
	if item, ok := c.items[key]; ok && !c.clock.Now().Before(item.expiresAt()) {
		delete(c.items, key)
	}
	c.mu.Unlock()
	return nil, false
}

// Set stores value under key with the given ttl, overwriting any prior
// entry. Last write wins.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &cacheItem{
		value:    value,
		storedAt: c.clock.Now(),
		ttl:      ttl,
	}
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Entries lists current entries with age and remaining TTL, newest first.
// Expired entries still present (not yet touched by a Get) are listed
// with zero remaining time.
func (c *MemoryCache) Entries(ctx context.Context) []ports.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.clock.Now()
	entries := make([]ports.Entry, 0, len(c.items))
	for key, item := range c.items {
		remaining := item.expiresAt().Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		entries = append(entries, ports.Entry{
			Key:       key,
			Size:      len(item.value),
			StoredAt:  item.storedAt,
			Age:       now.Sub(item.storedAt),
			Remaining: remaining,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StoredAt.After(entries[j].StoredAt)
	})
	return entries
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cacheItem)
	return nil
}

// Stats counts entries without evicting anything.
func (c *MemoryCache) Stats(ctx context.Context) ports.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.clock.Now()
	stats := ports.CacheStats{TotalEntries: len(c.items)}
	for _, item := range c.items {
		stats.TotalBytes += len(item.value)
		if now.Before(item.expiresAt()) {
			stats.ValidEntries++
		} else {
			stats.ExpiredEntries++
		}
	}
	return stats
}

var _ ports.Cache = (*MemoryCache)(nil)
