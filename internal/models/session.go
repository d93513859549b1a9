package models

import "time"

// Answer is one recorded response. The question text is copied in so the
// record stays readable if the catalog changes.
type Answer struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	IsAIGenerated bool   `json:"isAIGenerated"`
}

// BuildableUnit is an independently specifiable slice of a larger project.
type BuildableUnit struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AnalysisResult is the outcome of decomposing a project description. Only
// one of Summary (Kind single) or Units (Kind multiple) is meaningful.
type AnalysisResult struct {
	Kind    AnalysisKind    `json:"type"`
	Summary string          `json:"summary,omitempty"`
	Units   []BuildableUnit `json:"units,omitempty"`
}

// SingleResult builds a single-project analysis.
func SingleResult(summary string) AnalysisResult {
	return AnalysisResult{Kind: AnalysisSingle, Summary: summary}
}

// MultipleResult builds a decomposed analysis.
func MultipleResult(units []BuildableUnit) AnalysisResult {
	return AnalysisResult{Kind: AnalysisMultiple, Units: units}
}

// Unit returns the unit with the given id.
func (r AnalysisResult) Unit(id int) (BuildableUnit, bool) {
	for _, u := range r.Units {
		if u.ID == id {
			return u, true
		}
	}
	return BuildableUnit{}, false
}

// Session is the complete elicitation record for one run.
type Session struct {
	ID                   string          `json:"id"`
	CurrentQuestionIndex int             `json:"currentQuestionIndex"`
	Answers              []Answer        `json:"answers"`
	Status               SessionStatus   `json:"status"`
	ProjectSummary       string          `json:"projectSummary,omitempty"`
	WasMultiUnit         bool            `json:"wasMultiUnit"`
	AllUnits             []BuildableUnit `json:"allUnits,omitempty"`
	SelectedUnitID       *int            `json:"selectedUnitId,omitempty"`
	DeferredQ1           bool            `json:"deferredQ1"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// Clone returns a deep copy so that transitions never share slices or
// pointers with the record they replace.
func (s Session) Clone() Session {
	out := s
	if s.Answers != nil {
		out.Answers = append([]Answer(nil), s.Answers...)
	}
	if s.AllUnits != nil {
		out.AllUnits = append([]BuildableUnit(nil), s.AllUnits...)
	}
	if s.SelectedUnitID != nil {
		id := *s.SelectedUnitID
		out.SelectedUnitID = &id
	}
	return out
}

// AnswerRequest is the input to answer generation for one question.
type AnswerRequest struct {
	Question     string   `json:"question"`
	PriorAnswers []Answer `json:"previousAnswers"`
	Hint         string   `json:"userInput,omitempty"`
}
