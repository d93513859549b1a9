package llm

import (
	"fmt"
	"log/slog"
	"time"
)

// ProviderConfig selects and configures the text generation backend.
type ProviderConfig struct {
	Provider        string // "ollama" or "anthropic"
	OllamaBaseURL   string
	OllamaModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	Timeout         time.Duration
	MaxTries        uint
}

// NewGenerator builds the configured provider.
func NewGenerator(cfg ProviderConfig, logger *slog.Logger) (Generator, error) {
	switch cfg.Provider {
	case "ollama", "":
		return NewOllamaGenerator(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout, cfg.MaxTries, logger), nil
	case "anthropic":
		return NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxTries, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
