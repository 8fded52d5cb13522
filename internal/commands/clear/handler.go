package clear

import (
	"github.com/DisaAst/chathub-bot/internal/app/di"
	"github.com/DisaAst/chathub-bot/internal/commands/base"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

const CommandName = "clear"

type Command struct {
	*base.Command
}

func New(di *di.Container) *Command {
	cmd := &Command{}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(update telegram.Update) error {
	chatID := update.Message.Chat.ID
	c.History.Clear(chatID)
	c.Logger.WithField("chat_id", chatID).Debug("Conversation history cleared")
	return c.Reply(update, c.L(update.Message.From.ID, "clear.done", nil))
}
