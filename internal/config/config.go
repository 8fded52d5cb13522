package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	GLOBAL_LANGUAGE        = "global.interface_language"
	HTTP_PROXY             = "http.proxy"
	TELEGRAM_TOKEN         = "telegram.token"
	TELEGRAM_ALLOWED_USERS = "telegram.allowed_users"
	TELEGRAM_ALLOWED_CHATS = "telegram.allowed_chats"
	DATABASE_DSN           = "database.dsn"
	LOGGING_LEVEL          = "logging.level"
	LOGGING_WRITE_IN_FILE  = "logging.write_in_file"
	LOGGING_FILE_PATH      = "logging.file_path"
	AI_PROVIDERS           = "ai.providers"
	AI_TEXT_MODEL          = "ai.text_model"
	AI_AUDIO_MODEL         = "ai.audio_model"
	AI_IMAGE_MODEL         = "ai.image_model"
	AI_MAX_TOKENS          = "ai.max_tokens"
	AI_TOOL_MAX_STEPS      = "ai.tool_max_steps"
	SEARCH_BASIC_MODEL     = "search.basic_model"
	SEARCH_ADVANCED_MODEL  = "search.advanced_model"
	SEARCH_DDG_ENABLED     = "search.duckduckgo_fallback"
	HISTORY_LIMIT          = "history.limit"
	MEDIA_MAX_FILE_SIZE    = "media.max_file_size"
)

type Config struct {
	k *koanf.Koanf
}

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Path to config file")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		GLOBAL_LANGUAGE:       "en",
		TELEGRAM_TOKEN:        "",
		HTTP_PROXY:            nil,
		DATABASE_DSN:          "agent.db?_journal=WAL&_busy_timeout=5000&_synchronous=NORMAL",
		LOGGING_LEVEL:         "info",
		LOGGING_WRITE_IN_FILE: false,
		AI_TEXT_MODEL:         "openrouter:google/gemini-2.5-pro",
		AI_AUDIO_MODEL:        "openrouter:google/gemini-2.5-flash",
		AI_IMAGE_MODEL:        "openrouter:google/gemini-2.5-flash",
		AI_MAX_TOKENS:         10000,
		AI_TOOL_MAX_STEPS:     5,
		SEARCH_BASIC_MODEL:    "openrouter:perplexity/llama-3.1-sonar-small-128k-online",
		SEARCH_ADVANCED_MODEL: "openrouter:perplexity/llama-3.1-sonar-large-128k-online",
		SEARCH_DDG_ENABLED:    false,
		HISTORY_LIMIT:         7,
		MEDIA_MAX_FILE_SIZE:   20 * 1024 * 1024,

		"commands.start.enabled":       true,
		"commands.start.queue.enabled": false,

		"commands.ask.enabled":                    true,
		"commands.ask.queue.enabled":              true,
		"commands.ask.queue.max_retries":          0,
		"commands.ask.queue.timeout":              2 * time.Minute,
		"commands.ask.queue.throttle.period":      20 * time.Second,
		"commands.ask.queue.throttle.requests":    2,
		"commands.ask.queue.throttle.concurrency": 2,

		"commands.search.enabled":                    true,
		"commands.search.queue.enabled":              true,
		"commands.search.queue.max_retries":          0,
		"commands.search.queue.timeout":              1 * time.Minute,
		"commands.search.queue.throttle.period":      10 * time.Second,
		"commands.search.queue.throttle.requests":    2,
		"commands.search.queue.throttle.concurrency": 2,

		"commands.deepsearch.enabled":                    true,
		"commands.deepsearch.queue.enabled":              true,
		"commands.deepsearch.queue.max_retries":          0,
		"commands.deepsearch.queue.timeout":              2 * time.Minute,
		"commands.deepsearch.queue.throttle.period":      30 * time.Second,
		"commands.deepsearch.queue.throttle.requests":    1,
		"commands.deepsearch.queue.throttle.concurrency": 1,

		"commands.clear.enabled":          true,
		"commands.clear.queue.enabled":    false,
		"commands.stats.enabled":          true,
		"commands.stats.queue.enabled":    false,
		"commands.timezone.enabled":       true,
		"commands.timezone.queue.enabled": false,
	}
	k.Load(confmap.Provider(defaults, "."), nil)

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %v", path, err)
			}
			break
		}
	}

	k.Load(env.Provider("AIAGENT_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "AIAGENT_")),
			"_", ".",
		)
	}), nil)

	if k.Get(TELEGRAM_TOKEN) == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	return &Config{k: k}, nil
}

func getConfigPaths() []string {
	paths := []string{}
	if configPath != "" {
		paths = append(paths, configPath)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "telegram-ai-agent", "config.toml"))
	}
	paths = append(paths, "config.toml")
	return paths
}

func (c *Config) Global() GlobalConfig {
	return GlobalConfig{
		InterfaceLanguage: c.k.String(GLOBAL_LANGUAGE),
	}
}

func (c *Config) Log() LoggingConfig {
	return LoggingConfig{
		LogLevel:    c.k.String(LOGGING_LEVEL),
		WriteInFile: c.k.Bool(LOGGING_WRITE_IN_FILE),
		FilePath:    c.k.String(LOGGING_FILE_PATH),
	}
}

func (c *Config) Telegram() TelegramConfig {
	return TelegramConfig{
		Token:        c.k.String(TELEGRAM_TOKEN),
		AllowedUsers: c.k.Int64s(TELEGRAM_ALLOWED_USERS),
		AllowedChats: c.k.Int64s(TELEGRAM_ALLOWED_CHATS),
	}
}

func (c *Config) HTTP() HTTPConfig {
	return HTTPConfig{
		Proxy: c.k.String(HTTP_PROXY),
	}
}

func (c *Config) AI() AIConfig {
	var providers []ProviderConfig
	c.k.Unmarshal(AI_PROVIDERS, &providers)
	return AIConfig{
		Providers:    providers,
		TextModel:    c.k.String(AI_TEXT_MODEL),
		AudioModel:   c.k.String(AI_AUDIO_MODEL),
		ImageModel:   c.k.String(AI_IMAGE_MODEL),
		MaxTokens:    c.k.Int(AI_MAX_TOKENS),
		ToolMaxSteps: c.k.Int(AI_TOOL_MAX_STEPS),
	}
}

func (c *Config) Search() SearchConfig {
	return SearchConfig{
		BasicModel:         c.k.String(SEARCH_BASIC_MODEL),
		AdvancedModel:      c.k.String(SEARCH_ADVANCED_MODEL),
		DuckDuckGoFallback: c.k.Bool(SEARCH_DDG_ENABLED),
	}
}

func (c *Config) History() HistoryConfig {
	limit := c.k.Int(HISTORY_LIMIT)
	if limit < 1 {
		limit = 7
	}
	return HistoryConfig{Limit: limit}
}

func (c *Config) Media() MediaConfig {
	return MediaConfig{
		MaxFileSize: c.k.Int64(MEDIA_MAX_FILE_SIZE),
	}
}

func (c *Config) GetDatabaseDSN() string {
	return c.k.String(DATABASE_DSN)
}

func (c *Config) GetCommandConfig(name string) *CommandConfig {
	concurrency := c.k.Int(fmt.Sprintf("commands.%s.queue.throttle.concurrency", name))
	if concurrency == 0 {
		concurrency = 1
	}
	requests := c.k.Int(fmt.Sprintf("commands.%s.queue.throttle.requests", name))
	if requests == 0 {
		requests = 1
	}
	period := c.k.Duration(fmt.Sprintf("commands.%s.queue.throttle.period", name))
	if period == 0 {
		period = 10 * time.Second
	}
	timeout := c.k.Duration(fmt.Sprintf("commands.%s.queue.timeout", name))
	if timeout == 0 {
		timeout = 1 * time.Minute
	}
	return &CommandConfig{
		Enabled: c.k.Bool(fmt.Sprintf("commands.%s.enabled", name)),
		Queue: QueueOptions{
			Enabled:    c.k.Bool(fmt.Sprintf("commands.%s.queue.enabled", name)),
			MaxRetries: c.k.Int(fmt.Sprintf("commands.%s.queue.max_retries", name)),
			RetryDelay: c.k.Duration(fmt.Sprintf("commands.%s.queue.retry_delay", name)),
			Timeout:    timeout,
			Throttle: QueueThrottleOptions{
				Concurrency: concurrency,
				Period:      period,
				Requests:    requests,
			},
		},
	}
}
