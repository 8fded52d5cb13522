package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "weather_UTC", CacheKey("weather", "UTC"))
	assert.Equal(t, "weather_UTC", CacheKey("  Weather  ", ""))
	assert.Equal(t, "weather_Europe/Moscow", CacheKey("WEATHER", "Europe/Moscow"))
	assert.NotEqual(t, CacheKey("weather", "UTC"), CacheKey("weather", "Europe/Moscow"))
}

func TestResultCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newCache := func() *ResultCache {
		c := NewResultCache()
		c.now = func() time.Time { return now }
		return c
	}

	t.Run("get returns what put stored", func(t *testing.T) {
		c := newCache()
		c.Put("k", Result{Query: "q", Text: "answer"}, ResultTTL)

		result, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, "answer", result.Text)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		c := newCache()
		_, ok := c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("expired entry is absent and removed on read", func(t *testing.T) {
		c := newCache()
		c.Put("k", Result{Text: "stale"}, ResultTTL)

		now = now.Add(ResultTTL + time.Second)
		defer func() { now = now.Add(-ResultTTL - time.Second) }()

		_, ok := c.Get("k")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Stats().TotalEntries)
	})

	t.Run("entry at exact TTL boundary is expired", func(t *testing.T) {
		c := newCache()
		c.Put("k", Result{Text: "boundary"}, ResultTTL)

		now = now.Add(ResultTTL)
		defer func() { now = now.Add(-ResultTTL) }()

		_, ok := c.Get("k")
		assert.False(t, ok)
	})

	t.Run("sweep removes only expired entries", func(t *testing.T) {
		c := newCache()
		c.Put("old", Result{}, time.Minute)
		c.Put("fresh", Result{}, time.Hour)

		now = now.Add(10 * time.Minute)
		defer func() { now = now.Add(-10 * time.Minute) }()

		c.Sweep()

		stats := c.Stats()
		assert.Equal(t, 1, stats.TotalEntries)
		assert.Equal(t, 1, stats.ValidEntries)
		_, ok := c.Get("fresh")
		assert.True(t, ok)
	})

	t.Run("stats counts valid separately from total", func(t *testing.T) {
		c := newCache()
		c.Put("old", Result{}, time.Minute)
		c.Put("fresh", Result{}, time.Hour)

		now = now.Add(10 * time.Minute)
		defer func() { now = now.Add(-10 * time.Minute) }()

		stats := c.Stats()
		assert.Equal(t, 2, stats.TotalEntries)
		assert.Equal(t, 1, stats.ValidEntries)
	})
}
