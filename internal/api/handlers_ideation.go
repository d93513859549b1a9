package api

import (
	"errors"
	"net/http"

	"github.com/modryn-studio/specifythat/internal/ideation"
	"github.com/modryn-studio/specifythat/internal/models"
)

type IdeationHandler struct {
	svc *ideation.Service
}

func NewIdeationHandler(svc *ideation.Service) *IdeationHandler {
	return &IdeationHandler{svc: svc}
}

// Prompts handles GET /ideation/prompts
func (h *IdeationHandler) Prompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prompts": ideation.Prompts})
}

type composeRequest struct {
	Notes []models.Answer `json:"notes"`
}

// Compose handles POST /ideation/compose
func (h *IdeationHandler) Compose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	draft, err := h.svc.Compose(r.Context(), req.Notes)
	if errors.Is(err, ideation.ErrNoNotes) {
		writeError(w, http.StatusBadRequest, "notes are required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "compose description: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, draft)
}
