// Package search implements the explicit search commands: /search forces
// the cheap tier, /deepsearch forces the thorough one. Both share the
// router's cache with tool-driven searches.
package search

import (
	"context"
	"strings"

	"github.com/DisaAst/chathub-bot/internal/app/di"
	"github.com/DisaAst/chathub-bot/internal/commands/base"
	"github.com/DisaAst/chathub-bot/internal/search"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

const (
	CommandName     = "search"
	DeepCommandName = "deepsearch"
)

type Command struct {
	*base.Command
	router *search.Router
}

func New(di *di.Container) *Command {
	cmd := &Command{router: di.SearchRouter}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"s"}
}

func (c *Command) Execute(update telegram.Update) error {
	return executeSearch(c.Command, update, func(ctx context.Context, query, timezone string) search.Result {
		return c.router.BasicSearch(ctx, query, timezone)
	})
}

type DeepCommand struct {
	*base.Command
	router *search.Router
}

func NewDeep(di *di.Container) *DeepCommand {
	cmd := &DeepCommand{router: di.SearchRouter}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *DeepCommand) Name() string {
	return DeepCommandName
}

func (c *DeepCommand) Aliases() []string {
	return []string{"ds"}
}

func (c *DeepCommand) Execute(update telegram.Update) error {
	return executeSearch(c.Command, update, func(ctx context.Context, query, timezone string) search.Result {
		return c.router.AdvancedSearch(ctx, query, timezone)
	})
}

func executeSearch(
	c *base.Command,
	update telegram.Update,
	run func(ctx context.Context, query, timezone string) search.Result,
) error {
	msg := update.Message
	userID := msg.From.ID

	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		return c.Reply(update, c.L(userID, "commands.search.empty_query", nil))
	}

	if err := c.Tg.SendChatAction(msg.Chat.ID, telegram.ActionTyping); err != nil {
		c.Logger.WithError(err).Debug("Failed to send chat action")
	}
	placeholder := c.SendPlaceholder(update, c.L(userID, "commands.search.searching", nil))

	result := run(context.Background(), query, c.Settings.Timezone(userID))
	return c.EditOrReply(update, placeholder, result.Text)
}
