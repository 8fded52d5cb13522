package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	t.Run("critical queries go to advanced tier", func(t *testing.T) {
		tests := []string{
			"breaking news about the election",
			"BREAKING: earthquake reported",
			"urgent update on flight status",
			"срочные новости о выборах",
			"live stream of the match",
			"real-time stock prices",
			"realtime traffic data",
			"в реальном времени курс доллара",
			"emergency in the city center",
			"чрезвычайная ситуация в регионе",
			"авария на трассе М4",
		}

		for _, query := range tests {
			t.Run(query, func(t *testing.T) {
				result := c.Classify(query)
				assert.Equal(t, TierAdvanced, result.Tier)
				assert.Equal(t, 0.9, result.Confidence)
				assert.Equal(t, "critical pattern match", result.Reasoning)
			})
		}
	})

	t.Run("everything else goes to basic tier", func(t *testing.T) {
		tests := []string{
			"weather in Moscow today",
			"what is the capital of France",
			"how to cook borscht",
			"погода в Москве",
			"",
		}

		for _, query := range tests {
			t.Run(query, func(t *testing.T) {
				result := c.Classify(query)
				assert.Equal(t, TierBasic, result.Tier)
				assert.Equal(t, 0.8, result.Confidence)
				assert.Equal(t, "default cost-optimized tier", result.Reasoning)
			})
		}
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		assert.Equal(t, TierAdvanced, c.Classify("URGENT question").Tier)
		assert.Equal(t, TierAdvanced, c.Classify("Breaking News").Tier)
	})
}

func TestClassifier_IsSearchNeeded(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.IsSearchNeeded("what is the weather today"))
	assert.True(t, c.IsSearchNeeded("latest iPhone price"))
	assert.True(t, c.IsSearchNeeded("какие новости сегодня"))
	assert.True(t, c.IsSearchNeeded("курс доллара"))

	assert.False(t, c.IsSearchNeeded("tell me a joke"))
	assert.False(t, c.IsSearchNeeded("расскажи анекдот"))
	assert.False(t, c.IsSearchNeeded(""))
}
