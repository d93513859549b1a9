package interview

import (
	"github.com/modryn-studio/specifythat/internal/models"
)

// Phase is the part of the flow the interview is in. Together with the
// session's question index it identifies the state.
type Phase string

const (
	PhaseQuestion      Phase = "question"
	PhaseAnalyzing     Phase = "analyzing"
	PhaseUnitSelection Phase = "unit_selection"
	PhaseIdeation      Phase = "ideation"
	PhaseCompleted     Phase = "completed"
)

// AllPhases lists every phase, in flow order.
var AllPhases = []Phase{PhaseQuestion, PhaseAnalyzing, PhaseUnitSelection, PhaseIdeation, PhaseCompleted}

func (p Phase) IsValid() bool {
	for _, known := range AllPhases {
		if p == known {
			return true
		}
	}
	return false
}

// State is everything a front end needs to render an interview. It is a
// value: transitions return a new State and never modify the old one.
type State struct {
	Session models.Session `json:"session"`
	Phase   Phase          `json:"phase"`

	// Analysis holds the decomposition being chosen from during unit
	// selection.
	Analysis *models.AnalysisResult `json:"analysis,omitempty"`

	// AnalysisToken identifies the decomposition request in flight; zero
	// when none is.
	AnalysisToken uint64 `json:"-"`

	Suggestion        string `json:"suggestion,omitempty"`
	SuggestionPending bool   `json:"suggestionPending"`

	// Draft is a description produced by ideation, waiting for the user to
	// review and submit it.
	Draft string `json:"draft,omitempty"`

	// Error is a recoverable, dismissible message from a failed
	// collaborator call.
	Error string `json:"error,omitempty"`

	GeneratingName bool `json:"generatingName"`

	seq uint64
}

// Mode reports whether the user is in the interview or the ideation dialog.
func (s State) Mode() models.Mode {
	if s.Phase == PhaseIdeation {
		return models.ModeIdeation
	}
	return models.ModeInterview
}

// Loading is true while an awaited collaborator call is outstanding.
func (s State) Loading() bool {
	return s.Phase == PhaseAnalyzing || s.SuggestionPending
}

func (s State) clone() State {
	out := s
	out.Session = s.Session.Clone()
	if s.Analysis != nil {
		a := *s.Analysis
		a.Units = append([]models.BuildableUnit(nil), s.Analysis.Units...)
		out.Analysis = &a
	}
	return out
}
