package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DisaAst/chathub-bot/internal/logger"
)

// Provider is a single model backend speaking the chat-completions shape.
type Provider interface {
	Name() string
	Complete(ctx context.Context, request CompletionRequest) (*CompletionResponse, error)
}

// OpenAIClient talks to any OpenAI-compatible endpoint (OpenRouter, local
// gateways, vendor-hosted APIs).
type OpenAIClient struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

func NewOpenAIClient(name, baseURL, apiKey string, httpClient *http.Client, log logger.Logger) *OpenAIClient {
	return &OpenAIClient{
		name:       name,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     log,
	}
}

func (c *OpenAIClient) Name() string {
	return c.name
}

func (c *OpenAIClient) Complete(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.WithFields(logger.Fields{
		"provider": c.name,
		"model":    request.Model,
		"messages": len(request.Messages),
		"tools":    len(request.Tools),
	}).Debug("Completion request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{
			OriginalErr:  err,
			ProviderName: c.name,
			ModelName:    request.Model,
			Message:      "request failed",
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			OriginalErr:  err,
			ProviderName: c.name,
			ModelName:    request.Model,
			Message:      "failed to read response body",
		}
	}

	if resp.StatusCode != http.StatusOK {
		perr := &ProviderError{
			ProviderName:   c.name,
			ModelName:      request.Model,
			HTTPStatusCode: resp.StatusCode,
			Message:        strings.TrimSpace(string(respBody)),
		}
		var result CompletionResponse
		if json.Unmarshal(respBody, &result) == nil && result.Error != nil {
			perr.ErrorCode = result.Error.Code
			perr.Message = result.Error.Message
		}
		return nil, perr
	}

	var result CompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ProviderError{
			OriginalErr:  err,
			ProviderName: c.name,
			ModelName:    request.Model,
			Message:      "failed to unmarshal response",
		}
	}

	// OpenRouter and friends can report errors inside a 200 OK body.
	if result.Error != nil {
		return nil, &ProviderError{
			ProviderName: c.name,
			ModelName:    request.Model,
			ErrorCode:    result.Error.Code,
			Message:      result.Error.Message,
		}
	}

	if result.FirstMessage() == nil {
		return nil, &ProviderError{
			ProviderName: c.name,
			ModelName:    request.Model,
			Message:      "response contains no choices",
		}
	}

	return &result, nil
}
