package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/models"
	"github.com/modryn-studio/specifythat/internal/questions"
	"github.com/modryn-studio/specifythat/internal/sessions"
	"github.com/modryn-studio/specifythat/internal/specs"
)

// InterviewHandler exposes the interview runtime over HTTP.
type InterviewHandler struct {
	mgr    *sessions.Manager
	specs  *specs.Service
	logger *slog.Logger
}

func NewInterviewHandler(mgr *sessions.Manager, specSvc *specs.Service, logger *slog.Logger) *InterviewHandler {
	return &InterviewHandler{mgr: mgr, specs: specSvc, logger: logger}
}

type interviewResponse struct {
	ID string `json:"id"`
	interview.State
	Mode           models.Mode         `json:"mode"`
	Loading        bool                `json:"loading"`
	Progress       int                 `json:"progress"`
	QuestionNumber int                 `json:"questionNumber"`
	TotalQuestions int                 `json:"totalQuestions"`
	Question       *questions.Question `json:"question,omitempty"`
	Applied        *bool               `json:"applied,omitempty"`
}

func (h *InterviewHandler) view(id string, state interview.State) interviewResponse {
	m := h.mgr.Machine()
	resp := interviewResponse{
		ID:             id,
		State:          state,
		Mode:           state.Mode(),
		Loading:        state.Loading(),
		Progress:       m.Progress(state),
		TotalQuestions: m.Catalog().Len(),
	}
	if q, ok := m.Current(state); ok && state.Phase != interview.PhaseCompleted {
		resp.Question = &q
		resp.QuestionNumber = state.Session.CurrentQuestionIndex + 1
	}
	return resp
}

// respond writes the outcome of an interview operation. Operations that do
// not apply in the current state still return 200 with applied=false.
func (h *InterviewHandler) respond(w http.ResponseWriter, id string, out sessions.Outcome, err error) {
	var rejected *interview.InputRejectedError
	var svcErr *sessions.ServiceError
	switch {
	case err == nil:
		resp := h.view(id, out.State)
		resp.Applied = &out.Applied
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, sessions.ErrNotFound):
		writeError(w, http.StatusNotFound, "interview not found")
	case errors.As(err, &rejected):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: rejected.Message, Reason: string(rejected.Reason)})
	case errors.As(err, &svcErr):
		msg := out.State.Error
		if msg == "" {
			msg = svcErr.Error()
		}
		writeError(w, http.StatusBadGateway, msg)
	default:
		h.logger.Error("interview operation failed", "interview", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Create handles POST /interviews
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, state := h.mgr.Start()
	writeJSON(w, http.StatusCreated, h.view(id, state))
}

// Get handles GET /interviews/{id}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.mgr.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "interview not found")
		return
	}
	writeJSON(w, http.StatusOK, h.view(id, state))
}

// Delete handles DELETE /interviews/{id}
func (h *InterviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "interview not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	Text       string `json:"text"`
	Attachment string `json:"attachment"`
}

// Answer handles POST /interviews/{id}/answer
func (h *InterviewHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	out, err := h.mgr.Answer(r.Context(), id, req.Text, req.Attachment)
	h.respond(w, id, out, err)
}

type dontKnowRequest struct {
	Hint string `json:"hint"`
}

// DontKnow handles POST /interviews/{id}/dont-know
func (h *InterviewHandler) DontKnow(w http.ResponseWriter, r *http.Request) {
	var req dontKnowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	out, err := h.mgr.DontKnow(r.Context(), id, req.Hint)
	h.respond(w, id, out, err)
}

// AcceptSuggestion handles POST /interviews/{id}/suggestion/accept
func (h *InterviewHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.mgr.AcceptSuggestion(r.Context(), id)
	h.respond(w, id, out, err)
}

// DiscardSuggestion handles POST /interviews/{id}/suggestion/discard
func (h *InterviewHandler) DiscardSuggestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.mgr.DiscardSuggestion(r.Context(), id)
	h.respond(w, id, out, err)
}

// SelectUnit handles POST /interviews/{id}/units/{unitId}/select
func (h *InterviewHandler) SelectUnit(w http.ResponseWriter, r *http.Request) {
	unitID, err := strconv.Atoi(chi.URLParam(r, "unitId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unitId must be a number")
		return
	}
	id := chi.URLParam(r, "id")
	out, err := h.mgr.SelectUnit(r.Context(), id, unitID)
	h.respond(w, id, out, err)
}

// Back handles POST /interviews/{id}/back
func (h *InterviewHandler) Back(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.mgr.Back(r.Context(), id)
	h.respond(w, id, out, err)
}

// Reset handles POST /interviews/{id}/reset
func (h *InterviewHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.mgr.Reset(r.Context(), id)
	h.respond(w, id, out, err)
}

// EnterIdeation handles POST /interviews/{id}/ideation/enter
func (h *InterviewHandler) EnterIdeation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.mgr.EnterIdeation(r.Context(), id)
	h.respond(w, id, out, err)
}

// CancelIdeation handles POST /interviews/{id}/ideation/cancel
func (h *InterviewHandler) CancelIdeation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.mgr.CancelIdeation(r.Context(), id)
	h.respond(w, id, out, err)
}

type completeIdeationRequest struct {
	Description string `json:"description"`
}

// CompleteIdeation handles POST /interviews/{id}/ideation/complete
func (h *InterviewHandler) CompleteIdeation(w http.ResponseWriter, r *http.Request) {
	var req completeIdeationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	out, err := h.mgr.CompleteIdeation(r.Context(), id, req.Description)
	h.respond(w, id, out, err)
}

// DismissError handles POST /interviews/{id}/error/dismiss
func (h *InterviewHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	out, err := h.mgr.DismissError(r.Context(), id)
	h.respond(w, id, out, err)
}

// GenerateSpec handles POST /interviews/{id}/spec
func (h *InterviewHandler) GenerateSpec(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, err := h.mgr.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "interview not found")
		return
	}

	spec, err := h.specs.Generate(r.Context(), state)
	switch {
	case errors.Is(err, specs.ErrNotCompleted):
		writeError(w, http.StatusConflict, "Answer every question before generating a spec")
	case err != nil:
		h.logger.Error("spec generation failed", "interview", id, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to generate spec")
	default:
		writeJSON(w, http.StatusCreated, spec)
	}
}
