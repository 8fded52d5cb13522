package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DisaAst/chathub-bot/internal/ai"
	"github.com/DisaAst/chathub-bot/internal/history"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/search"
)

type scriptedProvider struct {
	responses []*ai.CompletionResponse
	requests  []ai.CompletionRequest
	err       error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, request ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.requests = append(p.requests, request)
	if p.err != nil {
		return nil, p.err
	}
	response := p.responses[0]
	if len(p.responses) > 1 {
		p.responses = p.responses[1:]
	}
	return response, nil
}

type fakeSearcher struct {
	queries []string
	text    string
}

func (f *fakeSearcher) Search(_ context.Context, query, _ string) search.Result {
	f.queries = append(f.queries, query)
	return search.Result{Query: query, Text: f.text}
}

func (f *fakeSearcher) IsSearchNeeded(string) bool { return false }

func textResponse(text string) *ai.CompletionResponse {
	return &ai.CompletionResponse{
		Choices: []ai.Choice{{Message: ai.MessageResponse{Content: text}}},
	}
}

func toolCallResponse(id, arguments string) *ai.CompletionResponse {
	return &ai.CompletionResponse{
		Choices: []ai.Choice{{Message: ai.MessageResponse{
			ToolCalls: []ai.ToolCall{{
				ID:       id,
				Type:     "function",
				Function: ai.FunctionCall{Name: SearchToolName, Arguments: arguments},
			}},
		}}},
	}
}

func newTextAgent(provider ai.Provider, searcher Searcher, store *history.Store) *TextAgent {
	return NewTextAgent(provider, "gpt-test", searcher, store, 5, 4096, logger.NewTestLogger())
}

func TestTextAgent_PlainAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{textResponse("Paris")}}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newTextAgent(provider, &fakeSearcher{}, store)

	response, err := agent.Respond(context.Background(), 1, 100, "capital of France?", "UTC")

	require.NoError(t, err)
	assert.Equal(t, "Paris", response.Text)
	assert.False(t, response.UsedWebSearch)
	assert.Equal(t, 1, response.StepCount)
	assert.False(t, response.MediaProcessed)

	// Exchange is recorded for the next turn.
	recent := store.Recent(1)
	require.Len(t, recent, 2)
	assert.Equal(t, "capital of France?", recent[0].Text)
	assert.Equal(t, "Paris", recent[1].Text)
}

func TestTextAgent_ToolLoop(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{
		toolCallResponse("call-1", `{"query":"weather London"}`),
		textResponse("It is raining in London."),
	}}
	searcher := &fakeSearcher{text: "London: rain, 12C"}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newTextAgent(provider, searcher, store)

	response, err := agent.Respond(context.Background(), 1, 100, "weather in London?", "UTC")

	require.NoError(t, err)
	assert.Equal(t, "It is raining in London.", response.Text)
	assert.True(t, response.UsedWebSearch)
	assert.Equal(t, 2, response.StepCount)
	assert.Equal(t, []string{"weather London"}, searcher.queries)

	// Second request carries the assistant tool call and the tool result.
	require.Len(t, provider.requests, 2)
	messages := provider.requests[1].Messages
	last := messages[len(messages)-1]
	assert.Equal(t, ai.RoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Equal(t, "London: rain, 12C", last.Text)
}

func TestTextAgent_HistoryFeedsContext(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{textResponse("again?")}}
	store := history.NewStore(7, logger.NewTestLogger())
	store.AppendUser(1, 100, "earlier question", history.ModalityText, "")
	store.AppendAssistant(1, "earlier answer")
	agent := newTextAgent(provider, &fakeSearcher{}, store)

	_, err := agent.Respond(context.Background(), 1, 100, "follow-up", "UTC")
	require.NoError(t, err)

	messages := provider.requests[0].Messages
	require.Len(t, messages, 4) // system + 2 history + prompt
	assert.Equal(t, ai.RoleSystem, messages[0].Role)
	assert.Equal(t, "earlier question", messages[1].Text)
	assert.Equal(t, ai.RoleAssistant, messages[2].Role)
	assert.Equal(t, "follow-up", messages[3].Text)
}

func TestTextAgent_MalformedToolArguments(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{
		toolCallResponse("call-1", `not json`),
		textResponse("never mind"),
	}}
	searcher := &fakeSearcher{}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newTextAgent(provider, searcher, store)

	response, err := agent.Respond(context.Background(), 1, 100, "hi", "UTC")

	require.NoError(t, err)
	assert.Equal(t, "never mind", response.Text)
	assert.Empty(t, searcher.queries)
}

func TestTextAgent_LastStepStripsTools(t *testing.T) {
	// The model keeps asking for searches; the loop must force an answer
	// by withholding tools on the final step.
	provider := &scriptedProvider{responses: []*ai.CompletionResponse{
		toolCallResponse("call-1", `{"query":"a"}`),
		toolCallResponse("call-2", `{"query":"b"}`),
		toolCallResponse("call-3", `{"query":"c"}`),
		toolCallResponse("call-4", `{"query":"d"}`),
		textResponse("final"),
	}}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newTextAgent(provider, &fakeSearcher{text: "result"}, store)

	response, err := agent.Respond(context.Background(), 1, 100, "hi", "UTC")

	require.NoError(t, err)
	assert.Equal(t, "final", response.Text)
	assert.Equal(t, 5, response.StepCount)

	require.Len(t, provider.requests, 5)
	assert.NotEmpty(t, provider.requests[0].Tools)
	assert.Empty(t, provider.requests[4].Tools)
}

func TestTextAgent_ProviderErrorPropagates(t *testing.T) {
	providerErr := errors.New("quota exceeded")
	provider := &scriptedProvider{err: providerErr}
	store := history.NewStore(7, logger.NewTestLogger())
	agent := newTextAgent(provider, &fakeSearcher{}, store)

	_, err := agent.Respond(context.Background(), 1, 100, "hi", "UTC")

	assert.ErrorIs(t, err, providerErr)
	// Nothing recorded for a failed turn.
	assert.Empty(t, store.Recent(1))
}
