package search

import (
	"regexp"
	"strings"
)

type Tier string

const (
	TierBasic    Tier = "basic"
	TierAdvanced Tier = "advanced"
)

type Classification struct {
	Tier       Tier
	Confidence float64
	Reasoning  string
}

// Queries matching these need live, up-to-the-minute data; everything else
// goes to the cheap tier. Advanced calls cost materially more, so the list
// is deliberately narrow.
var criticalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`breaking news|срочные новости|breaking|urgent|срочно`),
	regexp.MustCompile(`live|прямой эфир|онлайн|real.?time|в реальном времени`),
	regexp.MustCompile(`emergency|чрезвычайная ситуация|авария|катастрофа`),
}

var searchTriggerKeywords = []string{
	// English
	"news", "today", "current", "latest", "recent", "weather",
	"price", "stock", "happening", "now", "when", "where", "who",
	"this week", "this month", "this year", "trending", "update",
	"search", "find", "what is", "how much", "status", "results",

	// Russian
	"новости", "сегодня", "сейчас", "последние", "свежие", "актуальные",
	"погода", "курс", "цена", "биржа", "котировки", "события",
	"что происходит", "что случилось", "текущий", "недавно",
	"когда", "где", "кто", "статистика", "данные", "найди", "поищи",
}

// Classifier maps a query string to a search tier. Pure and total: every
// string, including the empty one, classifies without error.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Classify(query string) Classification {
	lower := strings.ToLower(query)

	for _, pattern := range criticalPatterns {
		if pattern.MatchString(lower) {
			return Classification{
				Tier:       TierAdvanced,
				Confidence: 0.9,
				Reasoning:  "critical pattern match",
			}
		}
	}

	return Classification{
		Tier:       TierBasic,
		Confidence: 0.8,
		Reasoning:  "default cost-optimized tier",
	}
}

// IsSearchNeeded is an advisory hint for agents deciding whether to invoke
// the search tool at all; the router itself trusts its caller.
func (c *Classifier) IsSearchNeeded(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, keyword := range searchTriggerKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
