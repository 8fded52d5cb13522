package core

import (
	"context"
	"errors"
	"strings"

	"github.com/DisaAst/chathub-bot/internal/commands"
	"github.com/DisaAst/chathub-bot/internal/commands/ask"
	"github.com/DisaAst/chathub-bot/internal/config"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/queue"
	"github.com/DisaAst/chathub-bot/internal/service"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

// Bot owns the update loop: it resolves each update to a registered
// command and hands it off, everything heavier happens in the command's
// queue workers.
type Bot struct {
	commands  map[string]commands.Command
	aliases   map[string]string
	tg        telegram.Client
	queue     *queue.Queue
	logger    logger.Logger
	cfg       *config.Config
	localizer *service.Localizer
}

func NewBot(
	tg telegram.Client,
	q *queue.Queue,
	log logger.Logger,
	cfg *config.Config,
	localizer *service.Localizer,
) (*Bot, error) {
	return &Bot{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		tg:        tg,
		queue:     q,
		logger:    log,
		cfg:       cfg,
		localizer: localizer,
	}, nil
}

func (b *Bot) RegisterCommand(cmd commands.Command) {
	b.commands[cmd.Name()] = cmd
	for _, alias := range cmd.Aliases() {
		b.aliases[alias] = cmd.Name()
	}
	b.logger.WithField("command", cmd.Name()).Info("Command registered")
}

func (b *Bot) Start(ctx context.Context) error {
	b.queue.Start(ctx, b.commands)

	updates := b.tg.GetUpdatesChan(b.tg.NewUpdate(0, 60, 0))
	b.logger.Info("Bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if !b.cfg.Telegram().IsAllowed(msg.From.ID, msg.Chat.ID) {
		b.logger.WithFields(logger.Fields{
			"user_id":  msg.From.ID,
			"username": msg.From.UserName,
			"chat_id":  msg.Chat.ID,
		}).Warn("Unauthorized access attempt")
		return
	}

	cmd := b.resolveCommand(update)
	if cmd == nil {
		return
	}

	go func() {
		err := cmd.Handle(update)
		if err == nil {
			return
		}
		if errors.Is(err, queue.ErrQueueFull) {
			b.logger.WithField("command", cmd.Name()).Warn("Command queue full")
			b.sendMessage(msg.Chat.ID, msg.MessageID, "errors.throttled")
			return
		}
		b.logger.WithError(err).WithField("command", cmd.Name()).Error("Failed to handle command")
		b.sendMessage(msg.Chat.ID, msg.MessageID, "errors.generic")
	}()
}

// resolveCommand picks the handler for an update. Explicit commands win;
// plain messages fall through to the ask command in private chats, or in
// groups when the bot is mentioned.
func (b *Bot) resolveCommand(update telegram.Update) commands.Command {
	msg := update.Message

	if name := msg.Command(); name != "" {
		if canonical, ok := b.aliases[name]; ok {
			name = canonical
		}
		if cmd, ok := b.commands[name]; ok {
			return cmd
		}
		b.logger.WithField("command", name).Debug("Unknown command")
		return nil
	}

	askCmd, ok := b.commands[ask.CommandName]
	if !ok {
		return nil
	}

	if msg.Chat.Type == "private" {
		return askCmd
	}

	botUsername := b.tg.Self().UserName
	mention := "@" + strings.ToLower(botUsername)
	text := strings.ToLower(msg.Text + " " + msg.Caption)
	if botUsername != "" && strings.Contains(text, mention) {
		msg.Text = stripMention(msg.Text, botUsername)
		msg.Caption = stripMention(msg.Caption, botUsername)
		return askCmd
	}

	return nil
}

func stripMention(text, botUsername string) string {
	if text == "" {
		return text
	}
	cleaned := strings.NewReplacer(
		"@"+botUsername, "",
		"@"+strings.ToLower(botUsername), "",
	).Replace(text)
	return strings.TrimSpace(cleaned)
}

func (b *Bot) sendMessage(chatID int64, replyTo int, messageID string) {
	msg := telegram.NewMessage(chatID, b.localizer.Localize(messageID, nil), replyTo)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.WithError(err).Error("Failed to send error message")
	}
}
