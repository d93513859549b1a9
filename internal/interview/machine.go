package interview

import (
	"math"
	"strings"

	"github.com/modryn-studio/specifythat/internal/input"
	"github.com/modryn-studio/specifythat/internal/models"
	"github.com/modryn-studio/specifythat/internal/questions"
)

// Result is the outcome of applying one event.
type Result struct {
	State   State
	Effects []Effect
	// Applied is false when the event was not valid in the current state;
	// State is then the unchanged input.
	Applied bool
}

type handler func(m *Machine, s State, ev Event) (State, []Effect, bool)

// transitions defines which events each phase accepts. Anything missing is
// a no-op. Handlers may still decline based on the question index.
var transitions = map[Phase]map[EventKind]handler{
	PhaseQuestion: {
		KindSubmitAnswer:          (*Machine).submitAnswer,
		KindAcceptGeneratedAnswer: (*Machine).acceptGeneratedAnswer,
		KindDeferFirstQuestion:    (*Machine).deferFirstQuestion,
		KindAnalyzeDescription:    (*Machine).analyzeDescription,
		KindGoBack:                (*Machine).goBack,
		KindEnterIdeation:         (*Machine).enterIdeation,
		KindRequestSuggestion:     (*Machine).requestSuggestion,
		KindSuggestionReady:       (*Machine).suggestionReady,
		KindSuggestionFailed:      (*Machine).suggestionFailed,
		KindDiscardSuggestion:     (*Machine).discardSuggestion,
	},
	PhaseAnalyzing: {
		KindAnalysisSucceeded: (*Machine).analysisSucceeded,
		KindAnalysisFailed:    (*Machine).analysisFailed,
		KindGoBack:            (*Machine).abortAnalysis,
	},
	PhaseUnitSelection: {
		KindSelectUnit: (*Machine).selectUnit,
		KindGoBack:     (*Machine).leaveUnitSelection,
	},
	PhaseIdeation: {
		KindCancelIdeation:   (*Machine).cancelIdeation,
		KindCompleteIdeation: (*Machine).completeIdeation,
	},
	PhaseCompleted: {
		KindGoBack: (*Machine).goBack,
	},
}

// anyPhase events are accepted regardless of phase.
var anyPhase = map[EventKind]handler{
	KindReset:               (*Machine).reset,
	KindResolveDeferredName: (*Machine).resolveDeferredName,
	KindDismissError:        (*Machine).dismissError,
}

// Accepts reports whether the table routes kind in phase p.
func Accepts(p Phase, kind EventKind) bool {
	if _, ok := anyPhase[kind]; ok {
		return true
	}
	_, ok := transitions[p][kind]
	return ok
}

// Machine applies events to interview state for one question catalog.
type Machine struct {
	catalog *questions.Catalog
}

func NewMachine(catalog *questions.Catalog) *Machine {
	return &Machine{catalog: catalog}
}

// Catalog returns the questions the machine walks through.
func (m *Machine) Catalog() *questions.Catalog {
	return m.catalog
}

// Start returns the state of a brand new session.
func (m *Machine) Start() State {
	return State{
		Session: models.Session{
			ID:        newSessionID(),
			Answers:   []models.Answer{},
			Status:    models.StatusInProgress,
			CreatedAt: timeNow().UTC(),
		},
		Phase: PhaseQuestion,
	}
}

// Apply computes the state that follows s when ev happens. Events that are
// not valid in s leave it unchanged with Applied false.
func (m *Machine) Apply(s State, ev Event) Result {
	h, ok := anyPhase[ev.Kind()]
	if !ok {
		h, ok = transitions[s.Phase][ev.Kind()]
	}
	if !ok {
		return Result{State: s}
	}

	next, effects, applied := h(m, s, ev)
	if !applied {
		return Result{State: s}
	}
	return Result{State: m.settle(next), Effects: effects, Applied: true}
}

// Current returns the question the session is on, if any.
func (m *Machine) Current(s State) (questions.Question, bool) {
	return m.catalog.At(s.Session.CurrentQuestionIndex)
}

// Progress is the share of questions answered, as a whole percentage.
func (m *Machine) Progress(s State) int {
	total := m.catalog.Len()
	if total == 0 {
		return 0
	}
	p := int(math.Round(float64(s.Session.CurrentQuestionIndex) / float64(total) * 100))
	if p > 100 {
		p = 100
	}
	return p
}

// settle derives status and the completed phase from the question index.
func (m *Machine) settle(s State) State {
	done := s.Session.CurrentQuestionIndex >= m.catalog.Len()
	if done {
		s.Session.Status = models.StatusCompleted
		if s.Phase == PhaseQuestion {
			s.Phase = PhaseCompleted
		}
	} else {
		s.Session.Status = models.StatusInProgress
		if s.Phase == PhaseCompleted {
			s.Phase = PhaseQuestion
		}
	}
	return s
}

// --- Answering ---

func (m *Machine) submitAnswer(s State, ev Event) (State, []Effect, bool) {
	return m.appendAnswer(s, ev.(SubmitAnswer).Text, false)
}

func (m *Machine) acceptGeneratedAnswer(s State, ev Event) (State, []Effect, bool) {
	return m.appendAnswer(s, ev.(AcceptGeneratedAnswer).Text, true)
}

// appendAnswer records an answer to any question except the description,
// which only resolves through analysis.
func (m *Machine) appendAnswer(s State, text string, generated bool) (State, []Effect, bool) {
	idx := s.Session.CurrentQuestionIndex
	if idx == questions.DescriptionIndex {
		return s, nil, false
	}
	q, ok := m.catalog.At(idx)
	if !ok {
		return s, nil, false
	}

	next := s.clone()
	next.Session.Answers = append(next.Session.Answers, models.Answer{
		Question:      q.Text,
		Answer:        text,
		IsAIGenerated: generated,
	})
	next.Session.CurrentQuestionIndex++
	next.clearTransient()
	return next, nil, true
}

func (m *Machine) deferFirstQuestion(s State, _ Event) (State, []Effect, bool) {
	if s.Session.CurrentQuestionIndex != questions.NameIndex {
		return s, nil, false
	}
	q, _ := m.catalog.At(questions.NameIndex)

	next := s.clone()
	next.Session.Answers = append(next.Session.Answers, models.Answer{
		Question:      q.Text,
		Answer:        "",
		IsAIGenerated: true,
	})
	next.Session.CurrentQuestionIndex++
	next.Session.DeferredQ1 = true
	next.clearTransient()
	return next, nil, true
}

// --- Analysis ---

func (m *Machine) analyzeDescription(s State, ev Event) (State, []Effect, bool) {
	if s.Session.CurrentQuestionIndex != questions.DescriptionIndex {
		return s, nil, false
	}
	e := ev.(AnalyzeDescription)

	next := s.clone()
	next.seq++
	next.AnalysisToken = next.seq
	next.Phase = PhaseAnalyzing
	next.Draft = ""
	next.clearTransient()

	return next, []Effect{Analyze{
		Token:       next.AnalysisToken,
		SessionID:   next.Session.ID,
		Description: e.Text,
		Attachment:  e.Attachment,
	}}, true
}

func (m *Machine) analysisSucceeded(s State, ev Event) (State, []Effect, bool) {
	e := ev.(AnalysisSucceeded)
	if e.Token != s.AnalysisToken || e.SessionID != s.Session.ID {
		return s, nil, false
	}

	next := s.clone()
	next.AnalysisToken = 0

	switch e.Result.Kind {
	case models.AnalysisSingle:
		next.Session.WasMultiUnit = false
		next.Session.AllUnits = nil
		next.Session.SelectedUnitID = nil
		effects := m.resolveDescription(&next, e.Result.Summary)
		return next, effects, true

	case models.AnalysisMultiple:
		if len(e.Result.Units) == 0 {
			next.Phase = PhaseQuestion
			next.Error = "No buildable units were found in that description. Please try again."
			return next, nil, true
		}
		units := append([]models.BuildableUnit(nil), e.Result.Units...)
		next.Phase = PhaseUnitSelection
		next.Session.WasMultiUnit = true
		next.Session.AllUnits = units
		result := models.MultipleResult(append([]models.BuildableUnit(nil), units...))
		next.Analysis = &result
		return next, nil, true
	}

	next.Phase = PhaseQuestion
	next.Error = "Analysis returned an unrecognised result. Please try again."
	return next, nil, true
}

func (m *Machine) analysisFailed(s State, ev Event) (State, []Effect, bool) {
	e := ev.(AnalysisFailed)
	if e.Token != s.AnalysisToken || e.SessionID != s.Session.ID {
		return s, nil, false
	}
	next := s.clone()
	next.AnalysisToken = 0
	next.Phase = PhaseQuestion
	next.Error = e.Err
	if next.Error == "" {
		next.Error = "Failed to analyze your description. Please try again."
	}
	return next, nil, true
}

// abortAnalysis is the user navigating away while decomposition runs. The
// token is dropped so the late result is ignored.
func (m *Machine) abortAnalysis(s State, _ Event) (State, []Effect, bool) {
	next := s.clone()
	next.AnalysisToken = 0
	next.Phase = PhaseQuestion
	return next, nil, true
}

// resolveDescription records text as the description answer. On a
// re-selection the existing answer is replaced instead of appended.
func (m *Machine) resolveDescription(s *State, text string) []Effect {
	q, _ := m.catalog.At(questions.DescriptionIndex)
	answer := models.Answer{Question: q.Text, Answer: text, IsAIGenerated: true}

	if s.Session.CurrentQuestionIndex == questions.DescriptionIndex {
		s.Session.Answers = append(s.Session.Answers, answer)
		s.Session.CurrentQuestionIndex++
	} else {
		s.Session.Answers[questions.DescriptionIndex] = answer
	}
	s.Session.ProjectSummary = text
	s.Phase = PhaseQuestion
	s.Analysis = nil
	s.clearTransient()

	if !s.Session.DeferredQ1 {
		return nil
	}
	s.GeneratingName = true
	return []Effect{ResolveName{SessionID: s.Session.ID, Context: text}}
}

// --- Unit selection ---

func (m *Machine) selectUnit(s State, ev Event) (State, []Effect, bool) {
	idx := s.Session.CurrentQuestionIndex
	if idx != questions.DescriptionIndex && idx != questions.DescriptionIndex+1 {
		return s, nil, false
	}
	unit, ok := models.MultipleResult(s.Session.AllUnits).Unit(ev.(SelectUnit).UnitID)
	if !ok {
		return s, nil, false
	}

	next := s.clone()
	id := unit.ID
	next.Session.SelectedUnitID = &id
	effects := m.resolveDescription(&next, unit.Description)
	return next, effects, true
}

// leaveUnitSelection returns to the description question. Coming back from
// a re-entered selection also un-answers the description.
func (m *Machine) leaveUnitSelection(s State, _ Event) (State, []Effect, bool) {
	next := s.clone()
	if next.Session.CurrentQuestionIndex == questions.DescriptionIndex+1 {
		next.Session.Answers = next.Session.Answers[:questions.DescriptionIndex]
		next.Session.CurrentQuestionIndex = questions.DescriptionIndex
		next.Session.ProjectSummary = ""
		next.Session.SelectedUnitID = nil
	}
	next.Session.WasMultiUnit = false
	next.Session.AllUnits = nil
	next.Analysis = nil
	next.Phase = PhaseQuestion
	next.clearTransient()
	return next, nil, true
}

// --- Navigation ---

func (m *Machine) goBack(s State, _ Event) (State, []Effect, bool) {
	idx := s.Session.CurrentQuestionIndex
	boundary := questions.DescriptionIndex + 1

	if idx == boundary && s.Session.WasMultiUnit {
		next := s.clone()
		result := models.MultipleResult(append([]models.BuildableUnit(nil), s.Session.AllUnits...))
		next.Analysis = &result
		next.Phase = PhaseUnitSelection
		next.clearTransient()
		return next, nil, true
	}

	if idx == 0 {
		return s, nil, false
	}

	next := s.clone()
	next.Session.CurrentQuestionIndex = idx - 1
	next.Session.Answers = next.Session.Answers[:idx-1]
	if idx == boundary {
		next.Session.ProjectSummary = ""
		next.Session.WasMultiUnit = false
		next.Session.SelectedUnitID = nil
		next.Session.AllUnits = nil
	}
	if idx-1 == questions.NameIndex {
		next.Session.DeferredQ1 = false
		next.GeneratingName = false
	}
	next.Phase = PhaseQuestion
	next.Draft = ""
	next.clearTransient()
	return next, nil, true
}

func (m *Machine) reset(s State, _ Event) (State, []Effect, bool) {
	next := m.Start()
	next.seq = s.seq
	return next, nil, true
}

// --- Ideation ---

func (m *Machine) enterIdeation(s State, _ Event) (State, []Effect, bool) {
	if s.Session.CurrentQuestionIndex != questions.DescriptionIndex {
		return s, nil, false
	}
	next := s.clone()
	next.Phase = PhaseIdeation
	next.clearTransient()
	return next, nil, true
}

func (m *Machine) cancelIdeation(s State, _ Event) (State, []Effect, bool) {
	next := s.clone()
	next.Phase = PhaseQuestion
	return next, nil, true
}

func (m *Machine) completeIdeation(s State, ev Event) (State, []Effect, bool) {
	next := s.clone()
	next.Phase = PhaseQuestion
	next.Draft = strings.TrimSpace(ev.(CompleteIdeation).Description)
	return next, nil, true
}

// --- Suggestions ---

func (m *Machine) requestSuggestion(s State, ev Event) (State, []Effect, bool) {
	idx := s.Session.CurrentQuestionIndex
	if idx <= questions.DescriptionIndex || s.SuggestionPending {
		return s, nil, false
	}
	q, ok := m.catalog.At(idx)
	if !ok {
		return s, nil, false
	}

	next := s.clone()
	next.SuggestionPending = true
	next.Suggestion = ""
	next.Error = ""
	return next, []Effect{Suggest{
		SessionID:     next.Session.ID,
		QuestionIndex: idx,
		Question:      q.Text,
		PriorAnswers:  append([]models.Answer(nil), next.Session.Answers...),
		Hint:          ev.(RequestSuggestion).Hint,
	}}, true
}

func (m *Machine) suggestionReady(s State, ev Event) (State, []Effect, bool) {
	e := ev.(SuggestionReady)
	if !s.SuggestionPending || e.SessionID != s.Session.ID || e.QuestionIndex != s.Session.CurrentQuestionIndex {
		return s, nil, false
	}
	next := s.clone()
	next.SuggestionPending = false
	next.Suggestion = e.Text
	return next, nil, true
}

func (m *Machine) suggestionFailed(s State, ev Event) (State, []Effect, bool) {
	e := ev.(SuggestionFailed)
	if !s.SuggestionPending || e.SessionID != s.Session.ID || e.QuestionIndex != s.Session.CurrentQuestionIndex {
		return s, nil, false
	}
	next := s.clone()
	next.SuggestionPending = false
	next.Error = e.Err
	if next.Error == "" {
		next.Error = "Failed to generate an answer. Please try again."
	}
	return next, nil, true
}

func (m *Machine) discardSuggestion(s State, _ Event) (State, []Effect, bool) {
	if s.Suggestion == "" {
		return s, nil, false
	}
	next := s.clone()
	next.Suggestion = ""
	return next, nil, true
}

// --- Any phase ---

// resolveDeferredName fills the placeholder first answer. It only lands
// while the session it was requested for still has the question deferred.
func (m *Machine) resolveDeferredName(s State, ev Event) (State, []Effect, bool) {
	e := ev.(ResolveDeferredName)
	if e.SessionID != s.Session.ID || !s.Session.DeferredQ1 {
		return s, nil, false
	}

	name := input.SanitizeProjectName(e.Name)
	if name == "" {
		name = models.FallbackProjectName
	}

	next := s.clone()
	if len(next.Session.Answers) > questions.NameIndex {
		next.Session.Answers[questions.NameIndex].Answer = name
	}
	next.Session.DeferredQ1 = false
	next.GeneratingName = false
	return next, nil, true
}

func (m *Machine) dismissError(s State, _ Event) (State, []Effect, bool) {
	if s.Error == "" {
		return s, nil, false
	}
	next := s.clone()
	next.Error = ""
	return next, nil, true
}

// clearTransient drops per-question UI state that does not survive a move.
func (s *State) clearTransient() {
	s.Suggestion = ""
	s.SuggestionPending = false
	s.Error = ""
}
