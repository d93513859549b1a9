package interview

import "github.com/modryn-studio/specifythat/internal/models"

// EventKind names an event for the transition table.
type EventKind string

const (
	KindSubmitAnswer          EventKind = "submit_answer"
	KindAcceptGeneratedAnswer EventKind = "accept_generated_answer"
	KindDeferFirstQuestion    EventKind = "defer_first_question"
	KindAnalyzeDescription    EventKind = "analyze_description"
	KindAnalysisSucceeded     EventKind = "analysis_succeeded"
	KindAnalysisFailed        EventKind = "analysis_failed"
	KindSelectUnit            EventKind = "select_unit"
	KindResolveDeferredName   EventKind = "resolve_deferred_name"
	KindGoBack                EventKind = "go_back"
	KindReset                 EventKind = "reset"
	KindEnterIdeation         EventKind = "enter_ideation"
	KindCancelIdeation        EventKind = "cancel_ideation"
	KindCompleteIdeation      EventKind = "complete_ideation"
	KindRequestSuggestion     EventKind = "request_suggestion"
	KindSuggestionReady       EventKind = "suggestion_ready"
	KindSuggestionFailed      EventKind = "suggestion_failed"
	KindDiscardSuggestion     EventKind = "discard_suggestion"
	KindDismissError          EventKind = "dismiss_error"
)

// AllEventKinds lists every event kind the machine understands.
var AllEventKinds = []EventKind{
	KindSubmitAnswer, KindAcceptGeneratedAnswer, KindDeferFirstQuestion,
	KindAnalyzeDescription, KindAnalysisSucceeded, KindAnalysisFailed,
	KindSelectUnit, KindResolveDeferredName, KindGoBack, KindReset,
	KindEnterIdeation, KindCancelIdeation, KindCompleteIdeation,
	KindRequestSuggestion, KindSuggestionReady, KindSuggestionFailed,
	KindDiscardSuggestion, KindDismissError,
}

// Event is an input to the machine.
type Event interface {
	Kind() EventKind
}

// --- User events ---

type SubmitAnswer struct{ Text string }

type AcceptGeneratedAnswer struct{ Text string }

type DeferFirstQuestion struct{}

type AnalyzeDescription struct {
	Text       string
	Attachment string
}

type SelectUnit struct{ UnitID int }

type GoBack struct{}

type Reset struct{}

type EnterIdeation struct{}

type CancelIdeation struct{}

// CompleteIdeation returns the ideation result to the description question
// as a draft. It is never submitted on the user's behalf.
type CompleteIdeation struct{ Description string }

type RequestSuggestion struct{ Hint string }

type DiscardSuggestion struct{}

type DismissError struct{}

// --- Collaborator results ---
//
// Each carries the session id (and, for analysis, the request token) of the
// request that produced it, so results that outlive their session are
// dropped.

type AnalysisSucceeded struct {
	Token     uint64
	SessionID string
	Result    models.AnalysisResult
}

type AnalysisFailed struct {
	Token     uint64
	SessionID string
	Err       string
}

type ResolveDeferredName struct {
	SessionID string
	Name      string
}

type SuggestionReady struct {
	SessionID     string
	QuestionIndex int
	Text          string
}

type SuggestionFailed struct {
	SessionID     string
	QuestionIndex int
	Err           string
}

func (SubmitAnswer) Kind() EventKind          { return KindSubmitAnswer }
func (AcceptGeneratedAnswer) Kind() EventKind { return KindAcceptGeneratedAnswer }
func (DeferFirstQuestion) Kind() EventKind    { return KindDeferFirstQuestion }
func (AnalyzeDescription) Kind() EventKind    { return KindAnalyzeDescription }
func (AnalysisSucceeded) Kind() EventKind     { return KindAnalysisSucceeded }
func (AnalysisFailed) Kind() EventKind        { return KindAnalysisFailed }
func (SelectUnit) Kind() EventKind            { return KindSelectUnit }
func (ResolveDeferredName) Kind() EventKind   { return KindResolveDeferredName }
func (GoBack) Kind() EventKind                { return KindGoBack }
func (Reset) Kind() EventKind                 { return KindReset }
func (EnterIdeation) Kind() EventKind         { return KindEnterIdeation }
func (CancelIdeation) Kind() EventKind        { return KindCancelIdeation }
func (CompleteIdeation) Kind() EventKind      { return KindCompleteIdeation }
func (RequestSuggestion) Kind() EventKind     { return KindRequestSuggestion }
func (SuggestionReady) Kind() EventKind       { return KindSuggestionReady }
func (SuggestionFailed) Kind() EventKind      { return KindSuggestionFailed }
func (DiscardSuggestion) Kind() EventKind     { return KindDiscardSuggestion }
func (DismissError) Kind() EventKind          { return KindDismissError }
