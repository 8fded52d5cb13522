package search

import (
	"strings"
	"sync"
	"time"
)

// Result is one answered search query. Immutable once created; the cache
// stores and hands out copies by value.
type Result struct {
	Query      string
	Text       string
	ProducedAt time.Time
}

type CacheStats struct {
	TotalEntries int
	ValidEntries int
}

type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

// ResultCache is a TTL-bounded memo for search results, shared by all
// search operations. Expired entries are logically absent: they are never
// returned and are removed on the read that finds them.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// CacheKey normalizes a query and appends a timezone discriminator.
// Distinct timezones must not share an entry: "today" resolves differently
// in each of them.
func CacheKey(query, timezone string) string {
	if timezone == "" {
		timezone = "UTC"
	}
	return strings.ToLower(strings.TrimSpace(query)) + "_" + timezone
}

func (c *ResultCache) Get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return Result{}, false
	}

	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return Result{}, false
	}

	return entry.result, true
}

func (c *ResultCache) Put(key string, result Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result:    result,
		expiresAt: c.now().Add(ttl),
	}
}

// Sweep removes every expired entry in one pass.
func (c *ResultCache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{TotalEntries: len(c.entries)}
	now := c.now()
	for _, entry := range c.entries {
		if now.Before(entry.expiresAt) {
			stats.ValidEntries++
		}
	}
	return stats
}
