package config

import (
	"os"
	"slices"
	"strings"
	"time"
)

type GlobalConfig struct {
	InterfaceLanguage string `koanf:"interface_language"`
}

type LoggingConfig struct {
	LogLevel    string `koanf:"level"`
	WriteInFile bool   `koanf:"write_in_file"`
	FilePath    string `koanf:"file_path"`
}

func (c LoggingConfig) Level() string {
	return strings.ToLower(c.LogLevel)
}

type TelegramConfig struct {
	Token        string  `koanf:"token"`
	AllowedUsers []int64 `koanf:"allowed_users"`
	AllowedChats []int64 `koanf:"allowed_chats"`
}

func (c TelegramConfig) IsAllowed(userID, chatID int64) bool {
	return c.isUserAllowed(userID) || c.isChatAllowed(chatID)
}

func (c TelegramConfig) isUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return false
	}
	return slices.Contains(c.AllowedUsers, userID)
}

func (c TelegramConfig) isChatAllowed(chatID int64) bool {
	if len(c.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.AllowedChats, chatID)
}

type HTTPConfig struct {
	Proxy string `koanf:"proxy"`
}

func (c HTTPConfig) GetProxy() string {
	if c.Proxy != "" {
		return c.Proxy
	}
	for _, name := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"} {
		if proxyURL := os.Getenv(name); proxyURL != "" {
			return proxyURL
		}
	}
	return ""
}

type ProviderConfig struct {
	Name         string `koanf:"name"`
	BaseURL      string `koanf:"base_url"`
	APIKey       string `koanf:"api_key"`
	APIKeyEnv    string `koanf:"api_key_env"`
	DefaultModel string `koanf:"default_model"`
}

func (c ProviderConfig) GetAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

type AIConfig struct {
	Providers    []ProviderConfig `koanf:"providers"`
	TextModel    string           `koanf:"text_model"`
	AudioModel   string           `koanf:"audio_model"`
	ImageModel   string           `koanf:"image_model"`
	MaxTokens    int              `koanf:"max_tokens"`
	ToolMaxSteps int              `koanf:"tool_max_steps"`
}

type SearchConfig struct {
	BasicModel         string `koanf:"basic_model"`
	AdvancedModel      string `koanf:"advanced_model"`
	DuckDuckGoFallback bool   `koanf:"duckduckgo_fallback"`
}

type HistoryConfig struct {
	Limit int `koanf:"limit"`
}

type MediaConfig struct {
	MaxFileSize int64 `koanf:"max_file_size"`
}

type QueueThrottleOptions struct {
	Concurrency int
	Period      time.Duration
	Requests    int
}

type QueueOptions struct {
	Enabled    bool
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	Throttle   QueueThrottleOptions
}

type CommandConfig struct {
	Enabled bool
	Queue   QueueOptions
}
