package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ErrInvalidModelSpec is returned for model references that are not in
// provider:model form.
var ErrInvalidModelSpec = errors.New("invalid model spec, expected provider:model")

type ToolFunction struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  Parameters `json:"parameters"`
}

type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitzero"`
}

type Property struct {
	Type        string   `json:"type"`
	Enum        []string `json:"enum,omitzero"`
	Description string   `json:"description,omitzero"`
}

type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func (fc FunctionCall) GetArguments() (map[string]any, error) {
	var result map[string]any
	err := json.Unmarshal([]byte(fc.Arguments), &result)
	return result, err
}

type ToolCall struct {
	Index    int          `json:"index"`
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type Content struct {
	Type     string `json:"type"` // "text", "image_url", "input_audio"
	Text     string `json:"text,omitempty"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url,omitzero"`
	InputAudio struct {
		Data   string `json:"data"`
		Format string `json:"format"`
	} `json:"input_audio,omitzero"`
}

func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

type Message struct {
	Role string `json:"role"`
	// Content is used by multimodal requests, Text by plain ones; exactly
	// one of them is marshalled into the wire "content" field.
	Content []Content `json:"-"`
	Text    string    `json:"-"`

	ToolCallID string     `json:"tool_call_id,omitzero"`
	ToolCalls  []ToolCall `json:"tool_calls,omitzero"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	type Alias Message
	aux := &struct {
		*Alias
		Content any `json:"content,omitzero"`
	}{
		Alias: (*Alias)(&m),
	}

	if len(m.Content) > 0 {
		aux.Content = m.Content
	} else {
		aux.Content = m.Text
	}

	return json.Marshal(aux)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type Alias Message
	aux := &struct {
		*Alias
		Content any `json:"content,omitzero"`
	}{
		Alias: (*Alias)(m),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch content := aux.Content.(type) {
	case string:
		m.Text = content
	case []any:
		raw, _ := json.Marshal(content)
		var contents []Content
		if err := json.Unmarshal(raw, &contents); err != nil {
			return err
		}
		m.Content = contents
	case nil:
	default:
		return fmt.Errorf("unexpected content type: %T", content)
	}

	return nil
}

type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Tools       []Tool    `json:"tools,omitzero"`
	MaxTokens   int       `json:"max_tokens,omitzero"`
	Temperature *float32  `json:"temperature,omitzero"`
	TopP        *float32  `json:"top_p,omitzero"`
}

type MessageResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

type ModelUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type Choice struct {
	Message      MessageResponse `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type CompletionResponse struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Usage   ModelUsage     `json:"usage,omitzero"`
	Error   *responseError `json:"error,omitzero"`
}

// FirstMessage returns the message of the first choice, or nil when the
// provider returned no choices at all.
func (r *CompletionResponse) FirstMessage() *MessageResponse {
	if len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0].Message
}

type responseError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}

// ParseModelSpec splits a provider:model reference.
func ParseModelSpec(spec string) (provider, model string, err error) {
	provider, model, ok := strings.Cut(spec, ":")
	if !ok || provider == "" || model == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidModelSpec, spec)
	}
	return provider, model, nil
}
