package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DisaAst/chathub-bot/internal/ai"
	"github.com/DisaAst/chathub-bot/internal/history"
	"github.com/DisaAst/chathub-bot/internal/logger"
)

func newImageAgent(provider ai.Provider, searcher Searcher, store *history.Store) *ImageAgent {
	return NewImageAgent(provider, "vision-test", searcher, store, 5, 4096, logger.NewTestLogger())
}

func TestImageAgent_PlainAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{textResponse("A cat on a sofa.")}}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newImageAgent(provider, &fakeSearcher{}, store)

	image := MediaBlob{Data: []byte{0xFF, 0xD8}, MimeType: "image/jpeg", FileID: "file-1"}
	response, err := agent.RespondImage(context.Background(), 1, 100, image, "what is this?", "UTC")

	require.NoError(t, err)
	assert.Equal(t, "A cat on a sofa.", response.Text)
	assert.False(t, response.UsedWebSearch)
	assert.Equal(t, 1, response.StepCount)

	// First user message carries the image followed by the question text.
	content := provider.requests[0].Messages[1].Content
	require.Len(t, content, 2)
	assert.Equal(t, "image_url", content[0].Type)
	assert.Contains(t, content[0].ImageURL.URL, "data:image/jpeg;base64,")
	assert.Equal(t, "what is this?", content[1].Text)

	recent := store.Recent(1)
	require.Len(t, recent, 2)
	assert.Equal(t, "what is this?", recent[0].Text)
	assert.Equal(t, history.ModalityImage, recent[0].Modality)
	assert.Equal(t, "file-1", recent[0].MediaRef)
}

func TestImageAgent_EmptyQuestionGetsDefaultPrompt(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{textResponse("Described.")}}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newImageAgent(provider, &fakeSearcher{}, store)

	_, err := agent.RespondImage(context.Background(), 1, 100, MediaBlob{Data: []byte{1}}, "", "UTC")

	require.NoError(t, err)
	content := provider.requests[0].Messages[1].Content
	assert.NotEmpty(t, content[1].Text)

	recent := store.Recent(1)
	require.Len(t, recent, 2)
	assert.Equal(t, "[image]", recent[0].Text)
}

func TestImageAgent_UsesSearchTool(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{
		toolCallResponse("call-1", `{"query":"vintage camera model X price"}`),
		textResponse("Roughly 300 euro on the used market."),
	}}
	searcher := &fakeSearcher{text: "listings around 300 EUR"}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newImageAgent(provider, searcher, store)

	image := MediaBlob{Data: []byte{0xFF}, MimeType: "image/jpeg"}
	response, err := agent.RespondImage(context.Background(), 1, 100, image, "how much is this worth?", "UTC")

	require.NoError(t, err)
	assert.True(t, response.UsedWebSearch)
	assert.Equal(t, 2, response.StepCount)
	assert.Equal(t, []string{"vintage camera model X price"}, searcher.queries)
}
