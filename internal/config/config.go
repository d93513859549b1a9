package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const appName = "specifythat"

type Config struct {
	Port     int
	DBPath   string
	LogLevel string
	LogFile  string
	APIKey   string
	// Language service
	LLMProvider     string
	OllamaBaseURL   string
	OllamaModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTimeout      time.Duration
	LLMMaxRetries   int
	NameTimeout     time.Duration
	// Analysis cache
	AnalysisCacheSize int
	AnalysisCacheTTL  time.Duration
	// Interviews
	InterviewIdleTTL time.Duration
	QuestionsFile    string
	// Feedback
	FeedbackForwardURL string
}

// LoadEnvFile reads KEY=value pairs from path into the environment without
// overriding variables that are already set. With an empty path it tries
// ./.env and ignores a missing file.
func LoadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               envInt("PORT", 8742),
		DBPath:             envStr("SPECIFYTHAT_DB_PATH", filepath.Join(xdg.DataHome, appName, appName+".db")),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		LogFile:            envStr("LOG_FILE", filepath.Join(xdg.StateHome, appName, appName+".log")),
		APIKey:             envStr("API_KEY", ""),
		LLMProvider:        strings.ToLower(envStr("LLM_PROVIDER", "ollama")),
		OllamaBaseURL:      envStr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:        envStr("OLLAMA_MODEL", "llama3.2"),
		AnthropicAPIKey:    envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     envStr("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		LLMTimeout:         envDuration("LLM_TIMEOUT", 2*time.Minute),
		LLMMaxRetries:      envInt("LLM_MAX_RETRIES", 3),
		NameTimeout:        envDuration("NAME_TIMEOUT", time.Minute),
		AnalysisCacheSize:  envInt("ANALYSIS_CACHE_SIZE", 256),
		AnalysisCacheTTL:   envDuration("ANALYSIS_CACHE_TTL", time.Hour),
		InterviewIdleTTL:   envDuration("INTERVIEW_IDLE_TTL", 24*time.Hour),
		QuestionsFile:      envStr("QUESTIONS_FILE", ""),
		FeedbackForwardURL: envStr("FEEDBACK_FORWARD_URL", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("SPECIFYTHAT_DB_PATH must not be empty")
	}
	if _, ok := levels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	switch c.LLMProvider {
	case "ollama":
		if c.OllamaBaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be ollama or anthropic, got %q", c.LLMProvider)
	}
	if c.LLMMaxRetries < 1 {
		return fmt.Errorf("LLM_MAX_RETRIES must be at least 1, got %d", c.LLMMaxRetries)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	if c.AnalysisCacheSize < 1 {
		return fmt.Errorf("ANALYSIS_CACHE_SIZE must be positive, got %d", c.AnalysisCacheSize)
	}
	if c.AnalysisCacheTTL <= 0 {
		return fmt.Errorf("ANALYSIS_CACHE_TTL must be positive, got %s", c.AnalysisCacheTTL)
	}
	if c.InterviewIdleTTL < 0 {
		return fmt.Errorf("INTERVIEW_IDLE_TTL must not be negative, got %s", c.InterviewIdleTTL)
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := levels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// envDuration accepts Go durations ("90s") or a plain number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
