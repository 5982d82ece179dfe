// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/colincmac/openai-plugins-serverless/chat"
	"github.com/colincmac/openai-plugins-serverless/logging"
)

// Backend identifiers accepted by Config.Backend.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendMock      = "mock"
)

// Config is the environment-driven runtime configuration.
type Config struct {
	// Backend selects the completion backend: openai, anthropic or mock.
	Backend string `env:"CHAT_BACKEND" envDefault:"openai"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-0"`

	CompletionTokenLimit int `env:"CHAT_COMPLETION_TOKEN_LIMIT" envDefault:"4096"`
	ResponseTokenLimit   int `env:"CHAT_RESPONSE_TOKEN_LIMIT" envDefault:"1024"`

	// SQLitePath enables the persistent store when set; empty keeps chats
	// in memory.
	SQLitePath string `env:"CHAT_SQLITE_PATH"`

	DistillWorkers  int `env:"CHAT_DISTILL_WORKERS" envDefault:"1"`
	DistillCapacity int `env:"CHAT_DISTILL_CAPACITY" envDefault:"16"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selection and credentials.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when CHAT_BACKEND=%s", BackendOpenAI)
		}
	case BackendAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when CHAT_BACKEND=%s", BackendAnthropic)
		}
	case BackendMock:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.ResponseTokenLimit >= c.CompletionTokenLimit {
		return fmt.Errorf("response token limit %d must be below completion token limit %d", c.ResponseTokenLimit, c.CompletionTokenLimit)
	}
	return nil
}

// LoggerConfig maps LOG_LEVEL and LOG_FORMAT onto a chat logger
// configuration. Unknown levels fall back to info.
func (c *Config) LoggerConfig() *logging.ChatLoggerConfig {
	cfg := logging.DefaultChatLoggerConfig()
	cfg.Format = c.LogFormat
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	default:
		cfg.Level = slog.LevelInfo
	}
	return cfg
}

// ChatOptions overlays the configured token limits onto the default prompt
// options.
func (c *Config) ChatOptions() *chat.Options {
	opts := chat.DefaultOptions()
	opts.CompletionTokenLimit = c.CompletionTokenLimit
	opts.ResponseTokenLimit = c.ResponseTokenLimit
	return opts
}
