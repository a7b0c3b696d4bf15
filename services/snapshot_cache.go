package services

import (
	"sync"
	"time"

	"research-machine/models"
)

// SnapshotCache provides TTL-based caching of price snapshots so repeated
// analyses of the same ticker inside one batch don't hammer the provider.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]snapshotEntry
	ttl     time.Duration
}

type snapshotEntry struct {
	snapshot *models.PriceSnapshot
	cachedAt time.Time
}

// NewSnapshotCache creates a new SnapshotCache with the specified TTL.
// A TTL of 0 effectively disables caching.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]snapshotEntry),
		ttl:     ttl,
	}
}

// Get returns the cached snapshot for a ticker and whether it is still valid
func (c *SnapshotCache) Get(ticker string) (*models.PriceSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[ticker]
	if !ok || time.Since(entry.cachedAt) >= c.ttl {
		return nil, false
	}
	return entry.snapshot, true
}

// Set stores a snapshot for a ticker
func (c *SnapshotCache) Set(ticker string, snapshot *models.PriceSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ticker] = snapshotEntry{snapshot: snapshot, cachedAt: time.Now()}
}

// Invalidate drops the cached snapshot for a ticker
func (c *SnapshotCache) Invalidate(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ticker)
}

// TTL returns the cache's time-to-live duration
func (c *SnapshotCache) TTL() time.Duration {
	return c.ttl
}

// DefaultSnapshotCacheTTL is the default TTL for snapshot caching (30 seconds)
const DefaultSnapshotCacheTTL = 30 * time.Second
