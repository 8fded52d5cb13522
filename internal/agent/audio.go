package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/DisaAst/chathub-bot/internal/ai"
	"github.com/DisaAst/chathub-bot/internal/history"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/timeutil"
)

// AudioAgent answers voice messages in a single multimodal completion:
// the model both transcribes and responds, no separate transcription step.
type AudioAgent struct {
	provider  ai.Provider
	model     string
	history   *history.Store
	maxTokens int
	logger    logger.Logger
	now       func() time.Time
}

func NewAudioAgent(provider ai.Provider, model string, store *history.Store, maxTokens int, log logger.Logger) *AudioAgent {
	return &AudioAgent{
		provider:  provider,
		model:     model,
		history:   store,
		maxTokens: maxTokens,
		logger:    log,
		now:       time.Now,
	}
}

func (a *AudioAgent) RespondAudio(ctx context.Context, chatID, userID int64, audio MediaBlob, steering, timezone string) (string, error) {
	a.logger.WithFields(logger.Fields{
		"chat_id": chatID,
		"mime":    audio.MimeType,
		"bytes":   audio.Size(),
	}).Debug("Processing voice message")

	content := []ai.Content{{
		Type: "input_audio",
	}}
	content[0].InputAudio.Data = base64.StdEncoding.EncodeToString(audio.Data)
	content[0].InputAudio.Format = audioFormat(audio.MimeType)

	instruction := "Listen to this voice message and respond to it helpfully, in the same language it is spoken in."
	if steering != "" {
		instruction = fmt.Sprintf("%s The user added: %s", instruction, steering)
	}
	content = append(content, ai.TextContent(instruction))

	request := ai.CompletionRequest{
		Model: a.model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Text: mediaSystemPrompt(timeutil.FormatDateTimeContext(a.now(), timezone))},
			{Role: ai.RoleUser, Content: content},
		},
		MaxTokens: a.maxTokens,
	}

	response, err := a.provider.Complete(ctx, request)
	if err != nil {
		return "", fmt.Errorf("audio completion: %w", err)
	}

	message := response.FirstMessage()
	if message == nil {
		return "", fmt.Errorf("audio completion: empty response from %s", a.provider.Name())
	}

	userText := steering
	if userText == "" {
		userText = "[voice message]"
	}
	a.history.AppendUser(chatID, userID, userText, history.ModalityAudio, audio.FileID)
	a.history.AppendAssistant(chatID, message.Content)

	return message.Content, nil
}

// audioFormat maps a mime type to the format tag the completion API
// expects. Telegram voice notes are ogg/opus.
func audioFormat(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "ogg"), strings.Contains(mimeType, "opus"):
		return "ogg"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "mp3"
	case strings.Contains(mimeType, "wav"):
		return "wav"
	default:
		return "ogg"
	}
}

func mediaSystemPrompt(dateTimeContext string) string {
	return fmt.Sprintf(`You are a helpful assistant in a chat application. Answer in the user's language.

%s

Be concise and conversational.`, dateTimeContext)
}
