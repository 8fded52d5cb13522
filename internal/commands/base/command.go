package base

import (
	"github.com/DisaAst/chathub-bot/internal/app/di"
	"github.com/DisaAst/chathub-bot/internal/commands"
	"github.com/DisaAst/chathub-bot/internal/config"
	"github.com/DisaAst/chathub-bot/internal/history"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/queue"
	"github.com/DisaAst/chathub-bot/internal/service"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

// Command carries the shared collaborators every bot command needs. A
// concrete command embeds it and overrides Name and Execute.
type Command struct {
	command   commands.Command
	Tg        telegram.Client
	Logger    logger.Logger
	Cfg       *config.Config
	Queue     *queue.Queue
	Localizer *service.Localizer
	Settings  *service.Settings
	History   *history.Store
}

func NewCommand(cmd commands.Command, di *di.Container) *Command {
	return &Command{
		command:   cmd,
		Tg:        di.BotClient,
		Logger:    di.Logger,
		Cfg:       di.Cfg,
		Queue:     di.Queue,
		Localizer: di.Localizer,
		Settings:  di.Settings,
		History:   di.History,
	}
}

func (c *Command) Name() string {
	return ""
}

func (c *Command) Aliases() []string {
	return []string{}
}

// Handle enqueues the update when the command runs through the queue,
// otherwise executes inline.
func (c *Command) Handle(update telegram.Update) error {
	cfg := c.Cfg.GetCommandConfig(c.command.Name())
	if cfg.Queue.Enabled {
		queueCfg := c.command.GetQueueConfig()
		return c.Queue.Add(c.command, update, queueCfg.MaxRetries, queueCfg.RetryDelay)
	}
	return c.command.Execute(update)
}

func (c *Command) GetQueueConfig() commands.QueueConfig {
	cfg := c.Cfg.GetCommandConfig(c.command.Name())
	return commands.QueueConfig{
		MaxRetries: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay,
		Timeout:    cfg.Queue.Timeout,
		Throttle: commands.ThrottleConfig{
			Concurrency: cfg.Queue.Throttle.Concurrency,
			Period:      cfg.Queue.Throttle.Period,
			Requests:    cfg.Queue.Throttle.Requests,
		},
	}
}

func (c *Command) Execute(update telegram.Update) error {
	return nil
}

// L localizes a message in the language of the given user.
func (c *Command) L(userID int64, messageID string, data map[string]any) string {
	return c.Localizer.LocalizeLang(c.Settings.Language(userID), messageID, data)
}

// Reply sends a plain text reply to the update's message.
func (c *Command) Reply(update telegram.Update, text string) error {
	msg := telegram.NewMessage(update.Message.Chat.ID, text, update.Message.MessageID)
	if _, err := c.Tg.Send(msg); err != nil {
		c.Logger.WithError(err).Error("Failed to send message")
		return err
	}
	return nil
}

// SendPlaceholder posts an interim status message. A send failure is not
// an error for the command, the final answer just arrives without one.
func (c *Command) SendPlaceholder(update telegram.Update, text string) *telegram.Message {
	sent, err := c.Tg.Send(telegram.NewMessage(update.Message.Chat.ID, text, update.Message.MessageID))
	if err != nil {
		c.Logger.WithError(err).Debug("Failed to send placeholder message")
		return nil
	}
	return sent
}

// EditOrReply replaces the placeholder with the final text, falling back
// to a fresh reply when there is no placeholder or the edit fails.
func (c *Command) EditOrReply(update telegram.Update, placeholder *telegram.Message, text string) error {
	if placeholder != nil {
		edit := telegram.NewEditMessageText(update.Message.Chat.ID, placeholder.MessageID, text)
		if _, err := c.Tg.Request(edit); err == nil {
			return nil
		} else {
			c.Logger.WithError(err).Debug("Failed to edit placeholder message")
		}
	}
	return c.Reply(update, text)
}
