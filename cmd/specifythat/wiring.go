package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/modryn-studio/specifythat/internal/config"
	"github.com/modryn-studio/specifythat/internal/feedback"
	"github.com/modryn-studio/specifythat/internal/ideation"
	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/llm"
	"github.com/modryn-studio/specifythat/internal/metrics"
	"github.com/modryn-studio/specifythat/internal/questions"
	"github.com/modryn-studio/specifythat/internal/sessions"
	"github.com/modryn-studio/specifythat/internal/specs"
	"github.com/modryn-studio/specifythat/internal/store"
)

const feedbackTimeout = 15 * time.Second

// app holds the services every front end shares.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *store.DB
	gen      llm.Generator
	cache    *llm.CachedDecomposer
	registry *prometheus.Registry

	manager   *sessions.Manager
	specs     *specs.Service
	ideation  *ideation.Service
	forwarder *feedback.Forwarder
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	catalog, err := loadCatalog(cfg.QuestionsFile)
	if err != nil {
		return nil, err
	}

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Language service
	gen, err := llm.NewGenerator(llm.ProviderConfig{
		Provider:        cfg.LLMProvider,
		OllamaBaseURL:   cfg.OllamaBaseURL,
		OllamaModel:     cfg.OllamaModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		Timeout:         cfg.LLMTimeout,
		MaxTries:        uint(cfg.LLMMaxRetries),
	}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	cache, err := llm.NewCachedDecomposer(llm.NewDecomposer(gen), cfg.AnalysisCacheSize, cfg.AnalysisCacheTTL)
	if err != nil {
		db.Close()
		return nil, err
	}

	nameQ, _ := catalog.At(questions.NameIndex)
	descQ, _ := catalog.At(questions.DescriptionIndex)
	answerer := llm.NewAnswerer(gen)
	namer := llm.NewNamer(answerer, nameQ.Text, descQ.Text)

	registry := prometheus.NewRegistry()
	provider := metrics.NewProvider(registry)

	manager := sessions.NewManager(
		interview.NewMachine(catalog),
		cache, namer, answerer,
		provider,
		sessions.Options{NameTimeout: cfg.NameTimeout, IdleTTL: cfg.InterviewIdleTTL},
		logger,
	)

	logger.Info("services ready",
		"llm", gen.Name(),
		"db", cfg.DBPath,
		"questions", catalog.Len(),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		gen:       gen,
		cache:     cache,
		registry:  registry,
		manager:   manager,
		specs:     specs.NewService(llm.NewSpecWriter(gen), store.NewSpecStore(db), provider, logger),
		ideation:  ideation.NewService(llm.NewComposer(gen), logger),
		forwarder: feedback.NewForwarder(store.NewFeedbackStore(db), cfg.FeedbackForwardURL, feedbackTimeout, logger),
	}, nil
}

// Close waits for background name lookups, then releases the cache and
// database.
func (a *app) Close() {
	a.manager.Wait()
	a.cache.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Error("close database", "error", err)
	}
}

func loadCatalog(path string) (*questions.Catalog, error) {
	if path == "" {
		return questions.Default()
	}
	catalog, err := questions.LoadFile(afero.NewOsFs(), path)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return catalog, nil
}
