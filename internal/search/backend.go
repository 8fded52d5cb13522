package search

import (
	"context"
	"fmt"

	"github.com/DisaAst/chathub-bot/internal/ai"
	"github.com/DisaAst/chathub-bot/internal/logger"
)

// Backend executes one search query and returns the answer text.
type Backend interface {
	Search(ctx context.Context, query, dateTimeContext string) (string, error)
}

const (
	basicMaxTokens      = 6000
	basicTemperature    = float32(0.3)
	advancedMaxTokens   = 10000
	advancedTemperature = float32(0.1)
)

const basicSearchNote = "\n\nNote: this is a basic search. For real-time information, try asking again with more specific current context."

// ModelBackend answers a query with a single completion call. The basic
// tier leans on the model's own knowledge, the advanced tier targets an
// online-connected model.
type ModelBackend struct {
	provider ai.Provider
	model    string
	tier     Tier
	logger   logger.Logger
}

func NewModelBackend(provider ai.Provider, model string, tier Tier, log logger.Logger) *ModelBackend {
	return &ModelBackend{
		provider: provider,
		model:    model,
		tier:     tier,
		logger:   log,
	}
}

func (b *ModelBackend) Search(ctx context.Context, query, dateTimeContext string) (string, error) {
	b.logger.WithFields(logger.Fields{
		"tier":  b.tier,
		"model": b.model,
		"query": query,
	}).Debug("Performing model search")

	request := b.buildRequest(query, dateTimeContext)
	response, err := b.provider.Complete(ctx, request)
	if err != nil {
		return "", err
	}

	text := response.FirstMessage().Content
	if b.tier == TierBasic {
		text += basicSearchNote
	}
	return text, nil
}

func (b *ModelBackend) buildRequest(query, dateTimeContext string) ai.CompletionRequest {
	if b.tier == TierAdvanced {
		temperature := advancedTemperature
		return ai.CompletionRequest{
			Model: b.model,
			Messages: []ai.Message{
				{Role: ai.RoleSystem, Text: advancedSearchSystem(dateTimeContext)},
				{Role: ai.RoleUser, Text: advancedSearchPrompt(query)},
			},
			MaxTokens:   advancedMaxTokens,
			Temperature: &temperature,
		}
	}

	temperature := basicTemperature
	return ai.CompletionRequest{
		Model: b.model,
		Messages: []ai.Message{
			{Role: ai.RoleUser, Text: basicSearchPrompt(query, dateTimeContext)},
		},
		MaxTokens:   basicMaxTokens,
		Temperature: &temperature,
	}
}

func basicSearchPrompt(query, dateTimeContext string) string {
	return fmt.Sprintf(`You are a helpful search assistant. The user is asking: %q

Current context: %s

Based on your knowledge (up to your training cutoff), provide a helpful answer. If this requires very recent/real-time information that you might not have, clearly indicate that and suggest checking current sources.

Respond in the same language as the query. Be concise but informative.

Query: %s`, query, dateTimeContext, query)
}

func advancedSearchSystem(dateTimeContext string) string {
	return fmt.Sprintf(`You are a helpful search assistant with real-time web search capabilities. Always respond in the same language as the user's query.

Current context: %s

Provide accurate, up-to-date information based on current web search results. Be specific with facts, dates, and sources when available.`, dateTimeContext)
}

func advancedSearchPrompt(query string) string {
	return fmt.Sprintf(`Search for current information about: %q

Please provide:
1. Current, factual information from reliable sources
2. Recent updates if this is a time-sensitive topic
3. Specific details like dates, numbers, locations when relevant
4. Brief context to help understand the information

Search query: %s`, query, query)
}
