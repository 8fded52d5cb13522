package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/DisaAst/chathub-bot/internal/ai"
	"github.com/DisaAst/chathub-bot/internal/history"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/search"
	"github.com/DisaAst/chathub-bot/internal/timeutil"
)

// SearchToolName is the function name the text agent exposes to the model.
const SearchToolName = "web_search"

// Searcher is the search capability injected into agents. It never fails:
// provider trouble surfaces as degraded result text.
type Searcher interface {
	Search(ctx context.Context, query, timezone string) search.Result
	IsSearchNeeded(prompt string) bool
}

// TextAgent answers plain text prompts with a bounded tool-calling loop:
// the model may ask for web searches mid-generation, each round trip
// counts as a step, and the loop is capped by maxSteps.
type TextAgent struct {
	provider  ai.Provider
	model     string
	searcher  Searcher
	history   *history.Store
	maxSteps  int
	maxTokens int
	logger    logger.Logger
	now       func() time.Time
}

func NewTextAgent(
	provider ai.Provider,
	model string,
	searcher Searcher,
	store *history.Store,
	maxSteps int,
	maxTokens int,
	log logger.Logger,
) *TextAgent {
	return &TextAgent{
		provider:  provider,
		model:     model,
		searcher:  searcher,
		history:   store,
		maxSteps:  maxSteps,
		maxTokens: maxTokens,
		logger:    log,
		now:       time.Now,
	}
}

func (a *TextAgent) Respond(ctx context.Context, chatID, userID int64, prompt, timezone string) (*Response, error) {
	loop := toolLoop{
		provider:  a.provider,
		model:     a.model,
		searcher:  a.searcher,
		maxSteps:  a.maxSteps,
		maxTokens: a.maxTokens,
		logger:    a.logger,
	}

	text, usedSearch, steps, err := loop.run(ctx, a.buildMessages(chatID, prompt, timezone), timezone)
	if err != nil {
		return nil, fmt.Errorf("text completion: %w", err)
	}

	a.history.AppendUser(chatID, userID, prompt, history.ModalityText, "")
	a.history.AppendAssistant(chatID, text)

	return &Response{
		Text:          text,
		UsedWebSearch: usedSearch,
		StepCount:     steps,
	}, nil
}

func (a *TextAgent) buildMessages(chatID int64, prompt, timezone string) []ai.Message {
	messages := []ai.Message{{
		Role: ai.RoleSystem,
		Text: textSystemPrompt(timeutil.FormatDateTimeContext(a.now(), timezone)),
	}}

	for _, msg := range a.history.Recent(chatID) {
		role := ai.RoleUser
		if msg.Role == history.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Text: msg.Text})
	}

	return append(messages, ai.Message{Role: ai.RoleUser, Text: prompt})
}

// toolLoop is the shared generation loop for agents that expose the
// search tool: run completions, execute requested searches, feed results
// back, until the model produces an answer or the step cap is reached.
type toolLoop struct {
	provider  ai.Provider
	model     string
	searcher  Searcher
	maxSteps  int
	maxTokens int
	logger    logger.Logger
}

func (l *toolLoop) run(ctx context.Context, messages []ai.Message, timezone string) (text string, usedSearch bool, steps int, err error) {
	for step := 1; step <= l.maxSteps; step++ {
		request := ai.CompletionRequest{
			Model:     l.model,
			Messages:  messages,
			MaxTokens: l.maxTokens,
		}
		// The last allowed step strips the tools so the model has to
		// produce a final answer instead of asking for another search.
		if step < l.maxSteps {
			request.Tools = []ai.Tool{searchTool()}
		}

		response, err := l.provider.Complete(ctx, request)
		if err != nil {
			return "", false, 0, err
		}

		message := response.FirstMessage()
		if message == nil {
			return "", false, 0, fmt.Errorf("empty response from %s", l.provider.Name())
		}

		if len(message.ToolCalls) == 0 {
			return message.Content, usedSearch, step, nil
		}

		messages = append(messages, ai.Message{
			Role:      ai.RoleAssistant,
			Text:      message.Content,
			ToolCalls: message.ToolCalls,
		})
		for _, call := range message.ToolCalls {
			messages = append(messages, ai.Message{
				Role:       ai.RoleTool,
				ToolCallID: call.ID,
				Text:       l.runTool(ctx, call, timezone),
			})
			if call.Function.Name == SearchToolName {
				usedSearch = true
			}
		}
	}

	return "", false, 0, fmt.Errorf("tool loop did not converge in %d steps", l.maxSteps)
}

func (l *toolLoop) runTool(ctx context.Context, call ai.ToolCall, timezone string) string {
	if call.Function.Name != SearchToolName {
		l.logger.WithField("tool", call.Function.Name).Warn("Model requested unknown tool")
		return fmt.Sprintf("Unknown tool %q, only %s is available.", call.Function.Name, SearchToolName)
	}

	args, err := call.Function.GetArguments()
	if err != nil {
		l.logger.WithError(err).Warn("Malformed tool arguments")
		return "Malformed tool arguments, expected a JSON object with a \"query\" field."
	}

	query, _ := args["query"].(string)
	if query == "" {
		return "Missing required \"query\" argument."
	}

	l.logger.WithField("query", query).Debug("Running web search tool")
	return l.searcher.Search(ctx, query, timezone).Text
}

func searchTool() ai.Tool {
	return ai.Tool{
		Type: "function",
		Function: ai.ToolFunction{
			Name:        SearchToolName,
			Description: "Search the web for current information: news, weather, prices, events, facts that may have changed after your training cutoff.",
			Parameters: ai.Parameters{
				Type: "object",
				Properties: map[string]ai.Property{
					"query": {
						Type:        "string",
						Description: "The search query, in the user's language.",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

func textSystemPrompt(dateTimeContext string) string {
	return fmt.Sprintf(`You are a helpful assistant in a chat application. Answer in the same language the user writes in.

%s

You have a %s tool. Use it when the question needs current information (news, weather, prices, live events); answer from your own knowledge otherwise. Keep answers concise and conversational.`, dateTimeContext, SearchToolName)
}
