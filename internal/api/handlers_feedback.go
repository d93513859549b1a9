package api

import (
	"errors"
	"net/http"

	"github.com/modryn-studio/specifythat/internal/feedback"
)

type FeedbackHandler struct {
	forwarder *feedback.Forwarder
}

func NewFeedbackHandler(forwarder *feedback.Forwarder) *FeedbackHandler {
	return &FeedbackHandler{forwarder: forwarder}
}

// Submit handles POST /feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req feedback.Submission
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	_, err := h.forwarder.Submit(r.Context(), req)
	switch {
	case errors.Is(err, feedback.ErrEmpty):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, feedback.ErrForward.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
