package search

import (
	"context"
	"regexp"
	"time"

	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/timeutil"
)

// ResultTTL is how long an answered query stays valid in the cache.
const ResultTTL = 30 * time.Minute

// Localizer renders user-visible texts in an explicitly chosen language.
type Localizer interface {
	LocalizeLang(lang, messageID string, data map[string]any) string
}

var cyrillicPattern = regexp.MustCompile(`(?i)[а-яё]`)

// Router decides how a query is searched: cache first, then a
// classification-selected tier backend with a date/time context, then
// cache population. A provider failure degrades to an uncached apology
// result instead of an error; the failed query retries on the next call.
type Router struct {
	cache      *ResultCache
	classifier *Classifier
	basic      Backend
	advanced   Backend
	localizer  Localizer
	logger     logger.Logger
	now        func() time.Time
}

func NewRouter(basic, advanced Backend, localizer Localizer, log logger.Logger) *Router {
	return &Router{
		cache:      NewResultCache(),
		classifier: NewClassifier(),
		basic:      basic,
		advanced:   advanced,
		localizer:  localizer,
		logger:     log,
		now:        time.Now,
	}
}

// Search routes a query through classification. An empty timezone is
// treated as UTC throughout.
func (r *Router) Search(ctx context.Context, query, timezone string) Result {
	key := CacheKey(query, timezone)
	if result, ok := r.cache.Get(key); ok {
		r.logger.WithField("query", query).Debug("Search cache hit")
		return result
	}

	classification := r.classifier.Classify(query)
	r.logger.WithFields(logger.Fields{
		"tier":       classification.Tier,
		"confidence": classification.Confidence,
		"reasoning":  classification.Reasoning,
	}).Debug("Query classified")

	return r.perform(ctx, r.backendFor(classification.Tier), key, query, timezone)
}

// BasicSearch bypasses classification and forces the cheap tier. Shares
// the cache and failure policy with Search.
func (r *Router) BasicSearch(ctx context.Context, query, timezone string) Result {
	key := CacheKey(query, timezone)
	if result, ok := r.cache.Get(key); ok {
		return result
	}
	return r.perform(ctx, r.basic, key, query, timezone)
}

// AdvancedSearch bypasses classification and forces the expensive tier.
func (r *Router) AdvancedSearch(ctx context.Context, query, timezone string) Result {
	key := CacheKey(query, timezone)
	if result, ok := r.cache.Get(key); ok {
		return result
	}
	return r.perform(ctx, r.advanced, key, query, timezone)
}

// IsSearchNeeded is the advisory trigger check agents consult before
// invoking the search tool.
func (r *Router) IsSearchNeeded(prompt string) bool {
	return r.classifier.IsSearchNeeded(prompt)
}

// CleanCache removes expired entries.
func (r *Router) CleanCache() {
	r.cache.Sweep()
}

func (r *Router) CacheStats() CacheStats {
	return r.cache.Stats()
}

func (r *Router) backendFor(tier Tier) Backend {
	if tier == TierAdvanced {
		return r.advanced
	}
	return r.basic
}

func (r *Router) perform(ctx context.Context, backend Backend, key, query, timezone string) Result {
	dateTimeContext := timeutil.FormatDateTimeContext(r.now(), timezone)

	text, err := backend.Search(ctx, query, dateTimeContext)
	if err != nil {
		r.logger.WithError(err).WithField("query", query).Error("Search failed, returning fallback")
		// Not cached: the next identical query retries the provider.
		return r.fallbackResult(query)
	}

	result := Result{
		Query:      query,
		Text:       text,
		ProducedAt: r.now(),
	}
	r.cache.Put(key, result, ResultTTL)
	return result
}

// fallbackResult builds a degraded apology result. Language is picked by
// sniffing the query script for Cyrillic; crude, but it keeps the router
// independent of per-user settings.
func (r *Router) fallbackResult(query string) Result {
	lang := "en"
	if cyrillicPattern.MatchString(query) {
		lang = "ru"
	}
	return Result{
		Query:      query,
		Text:       r.localizer.LocalizeLang(lang, "search.fallback", map[string]any{"Query": query}),
		ProducedAt: r.now(),
	}
}
