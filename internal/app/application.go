package app

import (
	"context"
	"flag"
	"time"

	"github.com/DisaAst/chathub-bot/internal/app/di"
	"github.com/DisaAst/chathub-bot/internal/commands"
	"github.com/DisaAst/chathub-bot/internal/commands/ask"
	"github.com/DisaAst/chathub-bot/internal/commands/clear"
	"github.com/DisaAst/chathub-bot/internal/commands/search"
	"github.com/DisaAst/chathub-bot/internal/commands/start"
	"github.com/DisaAst/chathub-bot/internal/commands/stats"
	"github.com/DisaAst/chathub-bot/internal/commands/timezone"
	"github.com/DisaAst/chathub-bot/internal/config"
	"github.com/DisaAst/chathub-bot/internal/core"
	"github.com/DisaAst/chathub-bot/internal/logger"
)

const cacheSweepInterval = 10 * time.Minute

type Application struct {
	Logger logger.Logger
	cfg    *config.Config
	bot    *core.Bot
	di     *di.Container
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*Application, error) {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	cfg, err := config.Load()
	if err != nil {
		cancel()
		return nil, err
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	container.Logger.Info("DI Container created")

	botInstance, err := core.NewBot(
		container.BotClient,
		container.Queue,
		container.Logger,
		cfg,
		container.Localizer,
	)
	if err != nil {
		container.Logger.Fatal(err)
	}
	container.Logger.Info("Bot instance created")

	app := &Application{
		cfg:    cfg,
		bot:    botInstance,
		di:     container,
		Logger: container.Logger,
		ctx:    ctx,
		cancel: cancel,
	}

	app.registerCommands()

	return app, nil
}

func (a *Application) Start() error {
	a.Logger.Info("Starting application")
	a.startCacheSweeper()
	return a.bot.Start(a.ctx)
}

func (a *Application) registerCommands() {
	available := []commands.Command{
		ask.New(a.di),
		search.New(a.di),
		search.NewDeep(a.di),
		clear.New(a.di),
		stats.New(a.di),
		timezone.New(a.di),
		start.New(a.di),
	}

	for _, cmd := range available {
		if a.cfg.GetCommandConfig(cmd.Name()).Enabled {
			a.bot.RegisterCommand(cmd)
		}
	}
}

// startCacheSweeper evicts expired search results in the background so
// an idle bot does not hold stale entries forever.
func (a *Application) startCacheSweeper() {
	go func() {
		ticker := time.NewTicker(cacheSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				a.di.SearchRouter.CleanCache()
			}
		}
	}()
}

func (a *Application) WaitForShutdown() {
	<-a.ctx.Done()
	a.Logger.Info("Application stopped")
}
