package interview

import "github.com/modryn-studio/specifythat/internal/models"

// Effect is asynchronous work a transition asks the caller to perform. The
// outcome comes back as an event.
type Effect interface {
	effect()
}

// Analyze asks for the project description to be decomposed. The caller
// awaits it and answers with AnalysisSucceeded or AnalysisFailed.
type Analyze struct {
	Token       uint64
	SessionID   string
	Description string
	Attachment  string
}

// ResolveName asks for a project name to fill the deferred first answer. It
// is fire-and-forget; the caller answers with ResolveDeferredName, using the
// fallback name if generation fails.
type ResolveName struct {
	SessionID string
	Context   string
}

// Suggest asks for a generated answer to the current question.
type Suggest struct {
	SessionID     string
	QuestionIndex int
	Question      string
	PriorAnswers  []models.Answer
	Hint          string
}

func (Analyze) effect()     {}
func (ResolveName) effect() {}
func (Suggest) effect()     {}
