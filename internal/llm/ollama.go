package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OllamaGenerator generates text with a local Ollama model.
type OllamaGenerator struct {
	baseURL    string
	model      string
	maxTries   uint
	httpClient *http.Client
	logger     *slog.Logger
}

func NewOllamaGenerator(baseURL, model string, timeout time.Duration, maxTries uint, logger *slog.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		maxTries: maxTries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ollamaRequest is the request body for Ollama /api/generate.
type ollamaRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaResponse is the response body from Ollama /api/generate.
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (g *OllamaGenerator) Name() string {
	return "ollama"
}

// Generate runs one non-streaming completion, retrying transient failures.
func (g *OllamaGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  g.model,
		System: system,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	attempt := 0
	text, err := withRetry(ctx, g.maxTries, func() (string, error) {
		attempt++
		if attempt > 1 {
			g.logger.Debug("retrying ollama generate", "attempt", attempt, "model", g.model)
		}
		return g.generateOnce(ctx, body)
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return text, nil
}

func (g *OllamaGenerator) generateOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &statusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// HealthCheck verifies Ollama is reachable.
func (g *OllamaGenerator) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check: status %d", resp.StatusCode)
	}
	return nil
}
