package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

type config struct {
	ConfigDir    string     `env:"WHATSCHAT_CONFIG_DIR"`
	ContactsFile string     `env:"WHATSCHAT_CONTACTS"`
	LogLevel     slog.Level `env:"WHATSCHAT_LOG_LEVEL" envDefault:"INFO"`

	// MaxAttachmentSize is in bytes.
	MaxAttachmentSize int64 `env:"WHATSCHAT_MAX_ATTACHMENT_SIZE" envDefault:"20971520"`
	// ReplyTimeout bounds every exchange; zero waits for as long as the
	// provider takes.
	ReplyTimeout time.Duration `env:"WHATSCHAT_REPLY_TIMEOUT" envDefault:"0s"`
	Notify       bool          `env:"WHATSCHAT_NOTIFY" envDefault:"true"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OllamaHost      string `env:"OLLAMA_HOST"`
}

func loadConfig() (config, error) {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		return config{}, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.ConfigDir == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return config{}, fmt.Errorf("error getting user config dir: %w", err)
		}
		cfg.ConfigDir = filepath.Join(cfgDir, "whatschat")
	}

	if cfg.MaxAttachmentSize < 0 {
		return config{}, fmt.Errorf("max attachment size must not be negative, got %d", cfg.MaxAttachmentSize)
	}
	if cfg.ReplyTimeout < 0 {
		return config{}, fmt.Errorf("reply timeout must not be negative, got %s", cfg.ReplyTimeout)
	}

	return cfg, nil
}
