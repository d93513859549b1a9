package api

import (
	"context"
	"net/http"
	"time"

	"github.com/modryn-studio/specifythat/internal/models"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db  pinger
	llm healthChecker
}

func NewHealthHandler(db pinger, llm healthChecker) *HealthHandler {
	return &HealthHandler{db: db, llm: llm}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := models.HealthResponse{
		Status:   "ok",
		Services: map[string]models.ServiceCheck{},
	}
	check := func(name string, err error) {
		if err != nil {
			resp.Services[name] = models.ServiceCheck{Status: "error", Error: err.Error()}
			resp.Status = "degraded"
			return
		}
		resp.Services[name] = models.ServiceCheck{Status: "ok"}
	}

	if h.llm != nil {
		check("llm", h.llm.HealthCheck(ctx))
	}
	if h.db != nil {
		check("db", h.db.PingContext(ctx))
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
