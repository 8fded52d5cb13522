package telegram

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

type ParseMode = string

const (
	ModeMarkdown = "Markdown"
)

type (
	Update        = tgbotapi.Update
	MessageEntity = tgbotapi.MessageEntity
	Chattable     = tgbotapi.Chattable
	APIResponse   = tgbotapi.APIResponse
)

// Message is the narrow view of an incoming message the bot cares about.
type Message struct {
	MessageID int
	Chat      Chat
	Text      string
	From      User
	Caption   string
	Command   string
}

type User struct {
	ID        int64
	FirstName string
	UserName  string
}

type Chat struct {
	ID   int64
	Type string
}

type MessageConfig interface {
	ToChattable() tgbotapi.Chattable
}

type TextMessage struct {
	ChatID              int64
	Text                string
	ReplyTo             int
	LinkPreviewDisabled bool
	ParseMode           ParseMode
}

func NewMessage(chatID int64, text string, replyTo int) TextMessage {
	return TextMessage{
		ChatID:  chatID,
		Text:    text,
		ReplyTo: replyTo,
	}
}

func (m TextMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyParameters.MessageID = m.ReplyTo
	msg.ParseMode = m.ParseMode
	msg.LinkPreviewOptions.IsDisabled = m.LinkPreviewDisabled
	return msg
}

type EditMessageTextConfig struct {
	ChatID    int64
	MessageID int
	Text      string
	ParseMode string
}

func NewEditMessageText(chatID int64, messageID int, text string) EditMessageTextConfig {
	return EditMessageTextConfig{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
}

func (m EditMessageTextConfig) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewEditMessageText(m.ChatID, m.MessageID, m.Text)
	msg.ParseMode = m.ParseMode
	return msg
}

type UpdateConfig struct {
	Offset  int
	Limit   int
	Timeout int
}

type ChatAction string

const (
	ActionTyping      ChatAction = "typing"
	ActionRecordVoice ChatAction = "record_voice"
)

type Client interface {
	Send(msg MessageConfig) (*Message, error)
	SendWithRetry(msg MessageConfig, maxRetryCount int) (*Message, error)
	SendChatAction(chatID int64, action ChatAction) error
	GetUpdatesChan(config UpdateConfig) <-chan tgbotapi.Update
	GetFileURL(fileID string) (string, error)
	Request(message MessageConfig) (*APIResponse, error)
	NewUpdate(offset, timeout, limit int) UpdateConfig
	Self() User
}
