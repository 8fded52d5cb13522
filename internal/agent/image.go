package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/DisaAst/chathub-bot/internal/ai"
	"github.com/DisaAst/chathub-bot/internal/history"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/timeutil"
)

// ImageAgent answers a question about one image with a vision completion.
// It carries the same search tool as the text agent, so "what is the
// price of the thing on this photo" can trigger a lookup.
type ImageAgent struct {
	provider  ai.Provider
	model     string
	searcher  Searcher
	history   *history.Store
	maxSteps  int
	maxTokens int
	logger    logger.Logger
	now       func() time.Time
}

func NewImageAgent(
	provider ai.Provider,
	model string,
	searcher Searcher,
	store *history.Store,
	maxSteps int,
	maxTokens int,
	log logger.Logger,
) *ImageAgent {
	return &ImageAgent{
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

func (a *ImageAgent) RespondImage(ctx context.Context, chatID, userID int64, image MediaBlob, question, timezone string) (*Response, error) {
	a.logger.WithFields(logger.Fields{
		"chat_id": chatID,
		"mime":    image.MimeType,
		"bytes":   image.Size(),
	}).Debug("Processing image")

	prompt := question
	if prompt == "" {
		prompt = "Describe this image and comment on anything notable in it."
	}

	imageContent := ai.Content{Type: "image_url"}
	imageContent.ImageURL.URL = dataURI(image)

	messages := []ai.Message{
		{Role: ai.RoleSystem, Text: mediaSystemPrompt(timeutil.FormatDateTimeContext(a.now(), timezone))},
		{Role: ai.RoleUser, Content: []ai.Content{imageContent, ai.TextContent(prompt)}},
	}

	loop := toolLoop{
		provider:  a.provider,
		model:     a.model,
		searcher:  a.searcher,
		maxSteps:  a.maxSteps,
		maxTokens: a.maxTokens,
		logger:    a.logger,
	}

	text, usedSearch, steps, err := loop.run(ctx, messages, timezone)
	if err != nil {
		return nil, fmt.Errorf("image completion: %w", err)
	}

	userText := question
	if userText == "" {
		userText = "[image]"
	}
	a.history.AppendUser(chatID, userID, userText, history.ModalityImage, image.FileID)
	a.history.AppendAssistant(chatID, text)

	return &Response{
		Text:          text,
		UsedWebSearch: usedSearch,
		StepCount:     steps,
	}, nil
}

func dataURI(blob MediaBlob) string {
	mime := blob.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(blob.Data))
}
