package llm

import (
	"context"
	"errors"
)

// Generator turns a system prompt and a user prompt into text. Ollama and
// Anthropic both implement it; the interview services are written against
// it.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	// HealthCheck verifies the provider is reachable.
	HealthCheck(ctx context.Context) error
	// Name identifies the provider in logs and health reports.
	Name() string
}

// ErrEmptyResponse is returned when the provider answered with no text.
var ErrEmptyResponse = errors.New("empty response from model")
