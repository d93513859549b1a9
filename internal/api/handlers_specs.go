package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/modryn-studio/specifythat/internal/specs"
)

type SpecHandler struct {
	specs *specs.Service
}

func NewSpecHandler(specSvc *specs.Service) *SpecHandler {
	return &SpecHandler{specs: specSvc}
}

// List handles GET /specs
func (h *SpecHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	list, err := h.specs.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list specs: "+err.Error())
		return
	}
	for i := range list {
		list[i].Markdown = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{"specs": list, "count": len(list)})
}

// Get handles GET /specs/{id}. With ?format=markdown the spec is sent as a
// file download.
func (h *SpecHandler) Get(w http.ResponseWriter, r *http.Request) {
	spec, err := h.specs.Get(chi.URLParam(r, "id"))
	if errors.Is(err, specs.ErrNotFound) {
		writeError(w, http.StatusNotFound, "spec not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get spec: "+err.Error())
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", specs.Filename(spec)))
		_, _ = w.Write([]byte(spec.Markdown))
		return
	}
	writeJSON(w, http.StatusOK, spec)
}
