package timezone

import (
	"errors"
	"strings"

	"github.com/DisaAst/chathub-bot/internal/app/di"
	"github.com/DisaAst/chathub-bot/internal/commands/base"
	"github.com/DisaAst/chathub-bot/internal/service"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

const CommandName = "timezone"

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

func (c *Command) Aliases() []string {
	return []string{"tz"}
}

func (c *Command) Execute(update telegram.Update) error {
	userID := update.Message.From.ID

	requested := strings.TrimSpace(update.Message.CommandArguments())
	if requested == "" {
		return c.Reply(update, c.L(userID, "timezone.current", map[string]any{
			"Timezone": c.Settings.Timezone(userID),
		}))
	}

	if strings.EqualFold(requested, "list") {
		lines := make([]string, 0, len(c.Settings.PopularTimezones()))
		for _, tz := range c.Settings.PopularTimezones() {
			lines = append(lines, "• "+tz)
		}
		return c.Reply(update, c.L(userID, "timezone.popular", map[string]any{
			"Timezones": strings.Join(lines, "\n"),
		}))
	}

	if err := c.Settings.SetTimezone(userID, requested); err != nil {
		var invalid service.ErrInvalidTimezone
		if errors.As(err, &invalid) {
			return c.Reply(update, c.L(userID, "timezone.invalid", map[string]any{
				"Timezone": requested,
			}))
		}
		c.Logger.WithError(err).WithField("user_id", userID).Error("Failed to save timezone")
		return c.Reply(update, c.L(userID, "errors.generic", nil))
	}

	return c.Reply(update, c.L(userID, "timezone.updated", map[string]any{
		"Timezone": requested,
	}))
}
