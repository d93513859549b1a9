package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator generates text with the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	maxTries  uint
	logger    *slog.Logger
}

func NewAnthropicGenerator(apiKey, model string, maxTries uint, logger *slog.Logger, opts ...option.RequestOption) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}

	// The SDK retries on its own; ours wraps it, so turn its retries off.
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 4096,
		maxTries:  maxTries,
		logger:    logger,
	}, nil
}

func (g *AnthropicGenerator) Name() string {
	return "anthropic"
}

func (g *AnthropicGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	text, err := withRetry(ctx, g.maxTries, func() (string, error) {
		msg, err := g.client.Messages.New(ctx, params)
		if err != nil {
			var apiErr *anthropic.Error
			if errors.As(err, &apiErr) {
				return "", &statusError{Code: apiErr.StatusCode, Body: apiErr.Error()}
			}
			return "", err
		}

		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		out := strings.TrimSpace(sb.String())
		if out == "" {
			return "", ErrEmptyResponse
		}
		return out, nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}
	return text, nil
}

// HealthCheck confirms the API key can reach the models endpoint.
func (g *AnthropicGenerator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		return fmt.Errorf("anthropic health check: %w", err)
	}
	return nil
}
