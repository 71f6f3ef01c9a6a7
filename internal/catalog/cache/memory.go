package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

// sweepThreshold is the entry count above which Set drops expired entries
const sweepThreshold = 1024

type memoryEntry struct {
	result    *domain.ListResult
	expiresAt time.Time
}

// MemoryCache is an in-process ResultCache with per-entry TTL
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	generation int64
	ttl        time.Duration
	now        func() time.Time
}

// NewMemoryCache creates an in-process cache. A non-positive ttl falls back to DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached payload if present and unexpired
func (c *MemoryCache) Get(_ context.Context, key string) (Lookup, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	gen := c.generation
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return Lookup{Generation: gen}, nil
	}
	return Lookup{Result: entry.result.Clone(), Hit: true, Generation: gen}, nil
}

// Set stores a copy of the payload for the configured TTL. Payloads from an
// invalidated generation are dropped.
func (c *MemoryCache) Set(_ context.Context, key string, generation int64, result *domain.ListResult) error {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return nil
	}

	if len(c.entries) >= sweepThreshold {
		for k, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}

	c.entries[key] = memoryEntry{
		result:    result.Clone(),
		expiresAt: now.Add(c.ttl),
	}
	return nil
}

// InvalidateAll drops every entry in a single swap
func (c *MemoryCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.generation++
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
