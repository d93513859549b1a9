package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modryn-studio/specifythat/internal/feedback"
	"github.com/modryn-studio/specifythat/internal/ideation"
	"github.com/modryn-studio/specifythat/internal/sessions"
	"github.com/modryn-studio/specifythat/internal/specs"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	mgr *sessions.Manager,
	specSvc *specs.Service,
	ideationSvc *ideation.Service,
	forwarder *feedback.Forwarder,
	health *HealthHandler,
	registry *prometheus.Registry,
	apiKey string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	interviewH := NewInterviewHandler(mgr, specSvc, logger)
	specH := NewSpecHandler(specSvc)
	ideationH := NewIdeationHandler(ideationSvc)

	// Unauthenticated routes
	r.Get("/health", health.Health)
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Route("/interviews", func(r chi.Router) {
			r.Post("/", interviewH.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", interviewH.Get)
				r.Delete("/", interviewH.Delete)
				r.Post("/answer", interviewH.Answer)
				r.Post("/dont-know", interviewH.DontKnow)
				r.Post("/suggestion/accept", interviewH.AcceptSuggestion)
				r.Post("/suggestion/discard", interviewH.DiscardSuggestion)
				r.Post("/units/{unitId}/select", interviewH.SelectUnit)
				r.Post("/back", interviewH.Back)
				r.Post("/reset", interviewH.Reset)
				r.Post("/ideation/enter", interviewH.EnterIdeation)
				r.Post("/ideation/cancel", interviewH.CancelIdeation)
				r.Post("/ideation/complete", interviewH.CompleteIdeation)
				r.Post("/error/dismiss", interviewH.DismissError)
				r.Post("/spec", interviewH.GenerateSpec)
			})
		})

		r.Route("/ideation", func(r chi.Router) {
			r.Get("/prompts", ideationH.Prompts)
			r.Post("/compose", ideationH.Compose)
		})

		r.Route("/specs", func(r chi.Router) {
			r.Get("/", specH.List)
			r.Get("/{id}", specH.Get)
		})

		if forwarder != nil {
			feedbackH := NewFeedbackHandler(forwarder)
			r.Post("/feedback", feedbackH.Submit)
		}
	})

	return r
}
