package stats

import (
	"github.com/DisaAst/chathub-bot/internal/app/di"
	"github.com/DisaAst/chathub-bot/internal/commands/base"
	"github.com/DisaAst/chathub-bot/internal/search"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

const CommandName = "stats"

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

func (c *Command) Execute(update telegram.Update) error {
	historyStats := c.History.Stats()
	cacheStats := c.router.CacheStats()

	return c.Reply(update, c.L(update.Message.From.ID, "stats.message", map[string]any{
		"Conversations": historyStats.TotalConversations,
		"Messages":      historyStats.TotalMessages,
		"Media":         historyStats.MediaMessages,
		"CacheTotal":    cacheStats.TotalEntries,
		"CacheValid":    cacheStats.ValidEntries,
		"Users":         c.Settings.KnownUsers(),
	}))
}
