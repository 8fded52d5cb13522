// Package ask implements the main conversational command: text prompts
// run through the tool-calling text agent, messages with attachments go
// through the multimedia dispatcher.
package ask

import (
	"context"
	"errors"
	"strings"

	"github.com/DisaAst/chathub-bot/internal/agent"
	"github.com/DisaAst/chathub-bot/internal/app/di"
	"github.com/DisaAst/chathub-bot/internal/commands/base"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

const CommandName = "ask"

type Command struct {
	*base.Command
	textAgent    *agent.TextAgent
	dispatcher   *agent.Dispatcher
	mediaFetcher *telegram.MediaFetcher
}

func New(di *di.Container) *Command {
	cmd := &Command{
		textAgent:    di.TextAgent,
		dispatcher:   di.Dispatcher,
		mediaFetcher: di.MediaFetcher,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"a"}
}

func (c *Command) Execute(update telegram.Update) error {
	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	timezone := c.Settings.Timezone(userID)

	prompt := strings.TrimSpace(msg.CommandArguments())
	if prompt == "" {
		prompt = strings.TrimSpace(msg.Text)
		if strings.HasPrefix(prompt, "/") {
			prompt = ""
		}
	}
	if prompt == "" && msg.Caption != "" {
		prompt = strings.TrimSpace(msg.Caption)
	}

	if err := c.Tg.SendChatAction(chatID, telegram.ActionTyping); err != nil {
		c.Logger.WithError(err).Debug("Failed to send chat action")
	}

	ctx := context.Background()

	images, audio, err := c.mediaFetcher.FromMessage(ctx, msg)
	if err != nil {
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Media acquisition failed")

		var tooLarge telegram.ErrFileTooLarge
		if errors.As(err, &tooLarge) {
			return c.Reply(update, c.L(userID, "errors.file_too_large", map[string]any{
				"MaxMB": tooLarge.Limit >> 20,
			}))
		}
		return c.Reply(update, c.L(userID, "errors.generic", nil))
	}

	if len(images) == 0 && audio == nil && prompt == "" {
		return c.Reply(update, c.L(userID, "ask.empty_prompt", nil))
	}

	placeholder := c.SendPlaceholder(update, c.L(userID, "ask.thinking", nil))

	var response *agent.Response
	if len(images) > 0 || audio != nil {
		response, err = c.dispatcher.Dispatch(ctx, agent.MultimediaRequest{
			ChatID:   chatID,
			UserID:   userID,
			Text:     prompt,
			Images:   images,
			Audio:    audio,
			Timezone: timezone,
		})
	} else {
		response, err = c.textAgent.Respond(ctx, chatID, userID, prompt, timezone)
	}
	if err != nil {
		if errors.Is(err, agent.ErrUnsupportedRequest) {
			return c.EditOrReply(update, placeholder, c.L(userID, "errors.unsupported_media", nil))
		}
		c.Logger.WithError(err).WithField("chat_id", chatID).Error("Agent request failed")
		return c.EditOrReply(update, placeholder, c.L(userID, "errors.generic", nil))
	}

	c.Logger.WithFields(logger.Fields{
		"chat_id":         chatID,
		"steps":           response.StepCount,
		"used_web_search": response.UsedWebSearch,
		"media_processed": response.MediaProcessed,
	}).Debug("Agent response ready")

	return c.EditOrReply(update, placeholder, response.Text)
}
