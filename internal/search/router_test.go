package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DisaAst/chathub-bot/internal/logger"
)

type spyBackend struct {
	calls int
	text  string
	err   error
}

func (s *spyBackend) Search(_ context.Context, query, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text + " for " + query, nil
}

type staticLocalizer struct{}

func (staticLocalizer) LocalizeLang(lang, messageID string, data map[string]any) string {
	return fmt.Sprintf("%s:%s", lang, messageID)
}

func newTestRouter(basic, advanced Backend) *Router {
	return NewRouter(basic, advanced, staticLocalizer{}, logger.NewTestLogger())
}

func TestRouter_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("basic tier by default", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		advanced := &spyBackend{text: "advanced"}
		r := newTestRouter(basic, advanced)

		result := r.Search(ctx, "weather in Paris", "UTC")

		assert.Equal(t, "basic for weather in Paris", result.Text)
		assert.Equal(t, 1, basic.calls)
		assert.Equal(t, 0, advanced.calls)
	})

	t.Run("critical query routes to advanced tier", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		advanced := &spyBackend{text: "advanced"}
		r := newTestRouter(basic, advanced)

		result := r.Search(ctx, "breaking news in Berlin", "UTC")

		assert.Equal(t, "advanced for breaking news in Berlin", result.Text)
		assert.Equal(t, 0, basic.calls)
		assert.Equal(t, 1, advanced.calls)
	})

	t.Run("repeated query within TTL hits cache once", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		r := newTestRouter(basic, &spyBackend{})

		first := r.Search(ctx, "weather", "UTC")
		second := r.Search(ctx, "weather", "UTC")

		assert.Equal(t, first, second)
		assert.Equal(t, 1, basic.calls)
	})

	t.Run("normalized queries share an entry", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		r := newTestRouter(basic, &spyBackend{})

		r.Search(ctx, "weather", "UTC")
		r.Search(ctx, "  WEATHER  ", "UTC")

		assert.Equal(t, 1, basic.calls)
	})

	t.Run("distinct timezones do not share an entry", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		r := newTestRouter(basic, &spyBackend{})

		r.Search(ctx, "weather", "UTC")
		r.Search(ctx, "weather", "Europe/Moscow")

		assert.Equal(t, 2, basic.calls)
	})

	t.Run("expired entry triggers a fresh backend call", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		r := newTestRouter(basic, &spyBackend{})

		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		r.now = func() time.Time { return now }
		r.cache.now = r.now

		r.Search(ctx, "weather", "UTC")
		now = now.Add(ResultTTL + time.Minute)
		r.Search(ctx, "weather", "UTC")

		assert.Equal(t, 2, basic.calls)
	})
}

func TestRouter_Fallback(t *testing.T) {
	ctx := context.Background()

	t.Run("backend failure yields localized fallback", func(t *testing.T) {
		basic := &spyBackend{err: errors.New("provider down")}
		r := newTestRouter(basic, &spyBackend{})

		result := r.Search(ctx, "weather today", "UTC")
		assert.Equal(t, "en:search.fallback", result.Text)

		result = r.Search(ctx, "погода сегодня", "UTC")
		assert.Equal(t, "ru:search.fallback", result.Text)
	})

	t.Run("fallback is not cached", func(t *testing.T) {
		basic := &spyBackend{err: errors.New("provider down")}
		r := newTestRouter(basic, &spyBackend{})

		r.Search(ctx, "weather", "UTC")
		assert.Equal(t, 0, r.CacheStats().TotalEntries)

		// Provider recovers; the same query must reach it again.
		basic.err = nil
		basic.text = "recovered"
		result := r.Search(ctx, "weather", "UTC")

		assert.Equal(t, "recovered for weather", result.Text)
		assert.Equal(t, 2, basic.calls)
		assert.Equal(t, 1, r.CacheStats().TotalEntries)
	})
}

func TestRouter_ForcedTiers(t *testing.T) {
	ctx := context.Background()

	t.Run("basic search ignores classification", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		advanced := &spyBackend{text: "advanced"}
		r := newTestRouter(basic, advanced)

		result := r.BasicSearch(ctx, "breaking news", "UTC")

		assert.Equal(t, "basic for breaking news", result.Text)
		assert.Equal(t, 0, advanced.calls)
	})

	t.Run("advanced search ignores classification", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		advanced := &spyBackend{text: "advanced"}
		r := newTestRouter(basic, advanced)

		result := r.AdvancedSearch(ctx, "how to cook pasta", "UTC")

		assert.Equal(t, "advanced for how to cook pasta", result.Text)
		assert.Equal(t, 0, basic.calls)
	})

	t.Run("forced tiers share the cache with routed search", func(t *testing.T) {
		basic := &spyBackend{text: "basic"}
		r := newTestRouter(basic, &spyBackend{})

		r.BasicSearch(ctx, "weather", "UTC")
		result := r.Search(ctx, "weather", "UTC")

		require.Equal(t, 1, basic.calls)
		assert.Equal(t, "basic for weather", result.Text)
	})
}

func TestRouter_CleanCache(t *testing.T) {
	basic := &spyBackend{text: "basic"}
	r := newTestRouter(basic, &spyBackend{})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	r.cache.now = r.now

	r.Search(context.Background(), "weather", "UTC")
	require.Equal(t, 1, r.CacheStats().TotalEntries)

	now = now.Add(ResultTTL + time.Minute)
	r.CleanCache()

	assert.Equal(t, 0, r.CacheStats().TotalEntries)
}
