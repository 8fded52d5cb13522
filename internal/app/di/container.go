package di

import (
	"fmt"
	"net/http"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/DisaAst/chathub-bot/internal/agent"
	"github.com/DisaAst/chathub-bot/internal/ai"
	"github.com/DisaAst/chathub-bot/internal/config"
	"github.com/DisaAst/chathub-bot/internal/database"
	"github.com/DisaAst/chathub-bot/internal/history"
	"github.com/DisaAst/chathub-bot/internal/logger"
	"github.com/DisaAst/chathub-bot/internal/network"
	"github.com/DisaAst/chathub-bot/internal/queue"
	"github.com/DisaAst/chathub-bot/internal/search"
	"github.com/DisaAst/chathub-bot/internal/service"
	"github.com/DisaAst/chathub-bot/internal/telegram"
)

type Container struct {
	Cfg          *config.Config
	Logger       logger.Logger
	DB           database.Database
	HTTPClient   *http.Client
	BotClient    telegram.Client
	Queue        *queue.Queue
	AI           *ai.Registry
	Localizer    *service.Localizer
	Settings     *service.Settings
	History      *history.Store
	SearchRouter *search.Router
	TextAgent    *agent.TextAgent
	Dispatcher   *agent.Dispatcher
	MediaFetcher *telegram.MediaFetcher
}

func NewContainer(cfg *config.Config) (*Container, error) {
	logCfg := cfg.Log()
	l := logger.NewLogrusLogger(&logCfg)

	if len(cfg.AI().Providers) == 0 {
		l.Fatal("No AI providers configured")
	}

	db, err := database.NewSQLiteDB(cfg, l)
	if err != nil {
		return nil, err
	}

	localizer, err := service.NewLocalizer(cfg.Global().InterfaceLanguage)
	if err != nil {
		l.WithError(err).Fatal("Error create localizer")
	}

	container := &Container{
		Cfg:       cfg,
		Logger:    l,
		DB:        db,
		Queue:     queue.NewQueue(l),
		Localizer: localizer,
	}

	httpCfg := network.NewDefaultHTTPClientConfig(cfg.HTTP())
	container.HTTPClient = network.SetupHTTPClient(httpCfg, l)

	registry := ai.NewRegistry(l)
	for _, providerCfg := range cfg.AI().Providers {
		provider := ai.NewOpenAIClient(
			providerCfg.Name,
			providerCfg.BaseURL,
			providerCfg.GetAPIKey(),
			container.HTTPClient,
			l,
		)
		registry.Register(providerCfg.Name, provider)
		l.WithField("provider", providerCfg.Name).Info("Initialized AI provider")
	}
	container.AI = registry

	container.History = history.NewStore(cfg.History().Limit, l)
	container.Settings = service.NewSettings(db, "UTC", cfg.Global().InterfaceLanguage, l)

	router, err := buildSearchRouter(cfg, registry, localizer, container.HTTPClient, l)
	if err != nil {
		return nil, err
	}
	container.SearchRouter = router

	aiCfg := cfg.AI()

	textProvider, textModel, err := registry.Resolve(aiCfg.TextModel)
	if err != nil {
		return nil, fmt.Errorf("text model: %w", err)
	}
	container.TextAgent = agent.NewTextAgent(
		textProvider,
		textModel,
		router,
		container.History,
		aiCfg.ToolMaxSteps,
		aiCfg.MaxTokens,
		l,
	)

	audioProvider, audioModel, err := registry.Resolve(aiCfg.AudioModel)
	if err != nil {
		return nil, fmt.Errorf("audio model: %w", err)
	}
	audioAgent := agent.NewAudioAgent(audioProvider, audioModel, container.History, aiCfg.MaxTokens, l)

	imageProvider, imageModel, err := registry.Resolve(aiCfg.ImageModel)
	if err != nil {
		return nil, fmt.Errorf("image model: %w", err)
	}
	imageAgent := agent.NewImageAgent(imageProvider, imageModel, router, container.History, aiCfg.ToolMaxSteps, aiCfg.MaxTokens, l)

	container.Dispatcher = agent.NewDispatcher(audioAgent, imageAgent, l)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram().Token)
	if err != nil {
		l.WithError(err).Fatal("Bot API client initialization error")
	}
	l.Info("Bot API initialized")
	container.BotClient = telegram.NewBotClient(api, l)

	shortHTTPCfg := network.NewShortHTTPClientConfig(cfg.HTTP())
	container.MediaFetcher = telegram.NewMediaFetcher(
		container.BotClient,
		network.SetupHTTPClient(shortHTTPCfg, l),
		cfg.Media().MaxFileSize,
		l,
	)

	return container, nil
}

// buildSearchRouter wires the two search tiers. The basic tier can run on
// DuckDuckGo scraping instead of a model when configured, which makes the
// cheap tier genuinely free.
func buildSearchRouter(
	cfg *config.Config,
	registry *ai.Registry,
	localizer *service.Localizer,
	httpClient *http.Client,
	l logger.Logger,
) (*search.Router, error) {
	searchCfg := cfg.Search()

	var basic search.Backend
	if searchCfg.DuckDuckGoFallback {
		basic = search.NewDuckDuckGoBackend(httpClient, 0, l)
	} else {
		provider, model, err := registry.Resolve(searchCfg.BasicModel)
		if err != nil {
			return nil, fmt.Errorf("basic search model: %w", err)
		}
		basic = search.NewModelBackend(provider, model, search.TierBasic, l)
	}

	provider, model, err := registry.Resolve(searchCfg.AdvancedModel)
	if err != nil {
		return nil, fmt.Errorf("advanced search model: %w", err)
	}
	advanced := search.NewModelBackend(provider, model, search.TierAdvanced, l)

	return search.NewRouter(basic, advanced, localizer, l), nil
}
