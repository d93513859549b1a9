package interview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modryn-studio/specifythat/internal/models"
	"github.com/modryn-studio/specifythat/internal/questions"
)

var testUnits = []models.BuildableUnit{
	{ID: 1, Name: "Invoicing", Description: "Create and send invoices to clients"},
	{ID: 2, Name: "Reminders", Description: "Automatic reminders for overdue invoices"},
	{ID: 3, Name: "Dashboard", Description: "Overview of paid and unpaid work"},
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	return NewMachine(questions.MustDefault())
}

func mustApply(t *testing.T, m *Machine, s State, ev Event) State {
	t.Helper()
	r := m.Apply(s, ev)
	require.True(t, r.Applied, "%s was not applied in phase %s at index %d", ev.Kind(), s.Phase, s.Session.CurrentQuestionIndex)
	return r.State
}

// analyze runs a description through a successful analysis and returns the
// resulting state and effects.
func analyze(t *testing.T, m *Machine, s State, result models.AnalysisResult) (State, []Effect) {
	t.Helper()
	r := m.Apply(s, AnalyzeDescription{Text: "A tool that helps freelancers send invoices"})
	require.True(t, r.Applied)
	require.Len(t, r.Effects, 1)
	eff, ok := r.Effects[0].(Analyze)
	require.True(t, ok)
	assert.Equal(t, PhaseAnalyzing, r.State.Phase)

	done := m.Apply(r.State, AnalysisSucceeded{Token: eff.Token, SessionID: eff.SessionID, Result: result})
	require.True(t, done.Applied)
	return done.State, done.Effects
}

// atQuestion3 answers the name and resolves the description as a single
// project.
func atQuestion3(t *testing.T, m *Machine) State {
	t.Helper()
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	s, _ = analyze(t, m, s, models.SingleResult("Invoicing for freelancers"))
	require.Equal(t, 2, s.Session.CurrentQuestionIndex)
	return s
}

func assertStable(t *testing.T, s State) {
	t.Helper()
	if s.Phase == PhaseAnalyzing || s.Phase == PhaseUnitSelection {
		return
	}
	assert.Equal(t, s.Session.CurrentQuestionIndex, len(s.Session.Answers), "answers/index mismatch in phase %s", s.Phase)
}

func TestStart(t *testing.T) {
	m := newTestMachine(t)
	s := m.Start()

	assert.NotEmpty(t, s.Session.ID)
	assert.Equal(t, 0, s.Session.CurrentQuestionIndex)
	assert.NotNil(t, s.Session.Answers)
	assert.Empty(t, s.Session.Answers)
	assert.Equal(t, models.StatusInProgress, s.Session.Status)
	assert.Equal(t, PhaseQuestion, s.Phase)
	assert.Equal(t, models.ModeInterview, s.Mode())
	assert.False(t, s.Session.CreatedAt.IsZero())
}

func TestSubmitAnswer(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})

	require.Len(t, s.Session.Answers, 1)
	assert.Equal(t, models.Answer{
		Question:      "What's the name of your project?",
		Answer:        "Invoicely",
		IsAIGenerated: false,
	}, s.Session.Answers[0])
	assert.Equal(t, 1, s.Session.CurrentQuestionIndex)

	// The description question only resolves through analysis.
	r := m.Apply(s, SubmitAnswer{Text: "A description"})
	assert.False(t, r.Applied)
	assert.Equal(t, "", cmp.Diff(s.Session, r.State.Session))

	r = m.Apply(s, AcceptGeneratedAnswer{Text: "A description"})
	assert.False(t, r.Applied)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	m := newTestMachine(t)
	s := atQuestion3(t, m)
	before := s.Session.Clone()

	next := mustApply(t, m, s, SubmitAnswer{Text: "Freelancers"})
	next.Session.Answers[0].Answer = "changed"

	assert.Equal(t, "", cmp.Diff(before, s.Session))
}

func TestSubmitThenGoBackRestoresSession(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, atQuestion3(t, m), SubmitAnswer{Text: "Freelancers"})

	for i := 0; i < 3; i++ {
		before := s.Session.Clone()
		after := mustApply(t, m, s, SubmitAnswer{Text: fmt.Sprintf("answer %d", i)})
		back := mustApply(t, m, after, GoBack{})

		if diff := cmp.Diff(before, back.Session); diff != "" {
			t.Fatalf("goBack did not restore session (-want +got):\n%s", diff)
		}
		s = after
	}
}

func TestAnswersTrackIndexThroughFlow(t *testing.T) {
	m := newTestMachine(t)
	events := []Event{
		DeferFirstQuestion{},
		EnterIdeation{},
		CompleteIdeation{Description: "An app for freelancers"},
		AnalyzeDescription{Text: "An app for freelancers"},
	}

	s := m.Start()
	for _, ev := range events {
		s = m.Apply(s, ev).State
		assertStable(t, s)
	}

	r := m.Apply(s, AnalysisSucceeded{Token: s.AnalysisToken, SessionID: s.Session.ID, Result: models.MultipleResult(testUnits)})
	s = r.State
	for _, ev := range []Event{SelectUnit{UnitID: 2}, SubmitAnswer{Text: "a"}, GoBack{}, GoBack{}, SelectUnit{UnitID: 3}, SubmitAnswer{Text: "b"}, GoBack{}, GoBack{}, GoBack{}} {
		s = m.Apply(s, ev).State
		assertStable(t, s)
	}
}

func TestDeferThenResolveName(t *testing.T) {
	m := newTestMachine(t)

	s := mustApply(t, m, m.Start(), DeferFirstQuestion{})
	require.Len(t, s.Session.Answers, 1)
	assert.Equal(t, "", s.Session.Answers[0].Answer)
	assert.True(t, s.Session.Answers[0].IsAIGenerated)
	assert.True(t, s.Session.DeferredQ1)
	assert.Equal(t, 1, s.Session.CurrentQuestionIndex)

	s, effects := analyze(t, m, s, models.SingleResult("Invoicing for freelancers"))
	require.Len(t, effects, 1)
	assert.Equal(t, ResolveName{SessionID: s.Session.ID, Context: "Invoicing for freelancers"}, effects[0])
	assert.True(t, s.GeneratingName)

	s = mustApply(t, m, s, SubmitAnswer{Text: "Freelancers"})
	s = mustApply(t, m, s, SubmitAnswer{Text: "Invoices"})
	require.Equal(t, 4, s.Session.CurrentQuestionIndex)

	s = mustApply(t, m, s, ResolveDeferredName{SessionID: s.Session.ID, Name: "  **Invoicely** | pro "})
	assert.Equal(t, "Invoicely pro", s.Session.Answers[0].Answer)
	assert.Equal(t, "What's the name of your project?", s.Session.Answers[0].Question)
	assert.False(t, s.Session.DeferredQ1)
	assert.False(t, s.GeneratingName)
	assert.Equal(t, 4, s.Session.CurrentQuestionIndex)
	assert.Len(t, s.Session.Answers, 4)

	// A second resolution has nothing left to fill.
	r := m.Apply(s, ResolveDeferredName{SessionID: s.Session.ID, Name: "Other"})
	assert.False(t, r.Applied)
}

func TestResolveDeferredName_Guards(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), DeferFirstQuestion{})

	t.Run("other session", func(t *testing.T) {
		r := m.Apply(s, ResolveDeferredName{SessionID: "someone-else", Name: "Nope"})
		assert.False(t, r.Applied)
	})

	t.Run("after reset", func(t *testing.T) {
		fresh := mustApply(t, m, s, Reset{})
		r := m.Apply(fresh, ResolveDeferredName{SessionID: s.Session.ID, Name: "Nope"})
		assert.False(t, r.Applied)
		assert.Empty(t, r.State.Session.Answers)
	})

	t.Run("name sanitizes to nothing", func(t *testing.T) {
		got := mustApply(t, m, s, ResolveDeferredName{SessionID: s.Session.ID, Name: "***"})
		assert.Equal(t, models.FallbackProjectName, got.Session.Answers[0].Answer)
	})

	t.Run("stepping back over the placeholder", func(t *testing.T) {
		back := mustApply(t, m, s, GoBack{})
		assert.False(t, back.Session.DeferredQ1)
		named := mustApply(t, m, back, SubmitAnswer{Text: "Typed Name"})
		r := m.Apply(named, ResolveDeferredName{SessionID: s.Session.ID, Name: "Generated"})
		assert.False(t, r.Applied)
		assert.Equal(t, "Typed Name", r.State.Session.Answers[0].Answer)
	})
}

func TestMultiUnitAnalysis(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})

	s, effects := analyze(t, m, s, models.MultipleResult(testUnits))
	assert.Empty(t, effects)
	assert.Equal(t, PhaseUnitSelection, s.Phase)
	assert.Equal(t, 1, s.Session.CurrentQuestionIndex)
	assert.Len(t, s.Session.Answers, 1)
	assert.True(t, s.Session.WasMultiUnit)
	assert.Equal(t, testUnits, s.Session.AllUnits)
	require.NotNil(t, s.Analysis)
	assert.Equal(t, models.AnalysisMultiple, s.Analysis.Kind)

	s = mustApply(t, m, s, SelectUnit{UnitID: testUnits[1].ID})
	assert.Equal(t, PhaseQuestion, s.Phase)
	assert.Equal(t, 2, s.Session.CurrentQuestionIndex)
	require.NotNil(t, s.Session.SelectedUnitID)
	assert.Equal(t, testUnits[1].ID, *s.Session.SelectedUnitID)
	assert.Equal(t, testUnits[1].Description, s.Session.ProjectSummary)
	assert.Equal(t, models.Answer{
		Question:      "Describe your project. What does it do and who is it for?",
		Answer:        testUnits[1].Description,
		IsAIGenerated: true,
	}, s.Session.Answers[1])

	// Back from question 3 re-opens the selection without un-answering.
	reopened := mustApply(t, m, s, GoBack{})
	assert.Equal(t, PhaseUnitSelection, reopened.Phase)
	assert.Equal(t, 2, reopened.Session.CurrentQuestionIndex)
	assert.Len(t, reopened.Session.Answers, 2)

	// Choosing again replaces the description answer.
	rechosen := mustApply(t, m, reopened, SelectUnit{UnitID: testUnits[2].ID})
	assert.Equal(t, 2, rechosen.Session.CurrentQuestionIndex)
	assert.Len(t, rechosen.Session.Answers, 2)
	assert.Equal(t, testUnits[2].Description, rechosen.Session.Answers[1].Answer)
	assert.Equal(t, testUnits[2].ID, *rechosen.Session.SelectedUnitID)

	// Back out of the re-opened selection to the description question.
	out := mustApply(t, m, reopened, GoBack{})
	assert.Equal(t, PhaseQuestion, out.Phase)
	assert.Equal(t, 1, out.Session.CurrentQuestionIndex)
	assert.Len(t, out.Session.Answers, 1)
	assert.False(t, out.Session.WasMultiUnit)
	assert.Nil(t, out.Session.AllUnits)
	assert.Nil(t, out.Session.SelectedUnitID)
	assert.Equal(t, "", out.Session.ProjectSummary)
}

func TestSelectUnit_Guards(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	s, _ = analyze(t, m, s, models.MultipleResult(testUnits))

	r := m.Apply(s, SelectUnit{UnitID: 99})
	assert.False(t, r.Applied)

	r = m.Apply(m.Start(), SelectUnit{UnitID: 1})
	assert.False(t, r.Applied)
}

func TestSelectUnit_ResolvesDeferredName(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), DeferFirstQuestion{})
	s, _ = analyze(t, m, s, models.MultipleResult(testUnits))

	r := m.Apply(s, SelectUnit{UnitID: 1})
	require.True(t, r.Applied)
	require.Len(t, r.Effects, 1)
	assert.Equal(t, ResolveName{SessionID: s.Session.ID, Context: testUnits[0].Description}, r.Effects[0])
}

func TestGoBack_FromFreshUnitSelection(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	s, _ = analyze(t, m, s, models.MultipleResult(testUnits))

	back := mustApply(t, m, s, GoBack{})
	assert.Equal(t, PhaseQuestion, back.Phase)
	assert.Equal(t, 1, back.Session.CurrentQuestionIndex)
	assert.False(t, back.Session.WasMultiUnit)
	assert.Nil(t, back.Session.AllUnits)
	assert.Nil(t, back.Analysis)
}

func TestGoBack_ClearsDecompositionAtBoundary(t *testing.T) {
	m := newTestMachine(t)
	s := atQuestion3(t, m)
	assert.Equal(t, "Invoicing for freelancers", s.Session.ProjectSummary)

	back := mustApply(t, m, s, GoBack{})
	assert.Equal(t, 1, back.Session.CurrentQuestionIndex)
	assert.Len(t, back.Session.Answers, 1)
	assert.Equal(t, "", back.Session.ProjectSummary)
	assert.False(t, back.Session.WasMultiUnit)
	assert.Nil(t, back.Session.SelectedUnitID)

	// Further along, stepping back keeps the summary.
	s = mustApply(t, m, s, SubmitAnswer{Text: "Freelancers"})
	back = mustApply(t, m, s, GoBack{})
	assert.Equal(t, "Invoicing for freelancers", back.Session.ProjectSummary)
}

func TestGoBack_AtStartIsNoOp(t *testing.T) {
	m := newTestMachine(t)
	s := m.Start()
	r := m.Apply(s, GoBack{})
	assert.False(t, r.Applied)
	assert.Equal(t, "", cmp.Diff(s.Session, r.State.Session))
}

func TestAnalysis_StaleResultsDropped(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})

	first := m.Apply(s, AnalyzeDescription{Text: "first"})
	oldToken := first.Effects[0].(Analyze).Token

	// Navigating away abandons the request.
	aborted := mustApply(t, m, first.State, GoBack{})
	assert.Equal(t, PhaseQuestion, aborted.Phase)
	assert.Equal(t, 1, aborted.Session.CurrentQuestionIndex)

	second := m.Apply(aborted, AnalyzeDescription{Text: "second"})
	newToken := second.Effects[0].(Analyze).Token
	assert.NotEqual(t, oldToken, newToken)

	late := m.Apply(second.State, AnalysisSucceeded{Token: oldToken, SessionID: s.Session.ID, Result: models.SingleResult("stale")})
	assert.False(t, late.Applied)
	assert.Equal(t, PhaseAnalyzing, late.State.Phase)

	done := mustApply(t, m, second.State, AnalysisSucceeded{Token: newToken, SessionID: s.Session.ID, Result: models.SingleResult("fresh")})
	assert.Equal(t, "fresh", done.Session.ProjectSummary)
}

func TestAnalysisFailed(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	r := m.Apply(s, AnalyzeDescription{Text: "desc"})
	eff := r.Effects[0].(Analyze)

	failed := mustApply(t, m, r.State, AnalysisFailed{Token: eff.Token, SessionID: eff.SessionID, Err: "service unavailable"})
	assert.Equal(t, PhaseQuestion, failed.Phase)
	assert.Equal(t, "service unavailable", failed.Error)
	assert.Equal(t, "", cmp.Diff(s.Session, failed.Session))

	dismissed := mustApply(t, m, failed, DismissError{})
	assert.Equal(t, "", dismissed.Error)

	assert.False(t, m.Apply(dismissed, DismissError{}).Applied)
}

func TestAnalysis_EmptyMultipleIsAFailure(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	s, _ = analyze(t, m, s, models.MultipleResult(nil))

	assert.Equal(t, PhaseQuestion, s.Phase)
	assert.NotEmpty(t, s.Error)
	assert.Equal(t, 1, s.Session.CurrentQuestionIndex)
	assert.False(t, s.Session.WasMultiUnit)
}

func TestReset(t *testing.T) {
	m := newTestMachine(t)
	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	r := m.Apply(s, AnalyzeDescription{Text: "desc"})
	eff := r.Effects[0].(Analyze)

	fresh := mustApply(t, m, r.State, Reset{})
	assert.NotEqual(t, s.Session.ID, fresh.Session.ID)
	assert.Equal(t, 0, fresh.Session.CurrentQuestionIndex)
	assert.Empty(t, fresh.Session.Answers)
	assert.Equal(t, PhaseQuestion, fresh.Phase)
	assert.Nil(t, fresh.Analysis)
	assert.False(t, fresh.Loading())

	late := m.Apply(fresh, AnalysisSucceeded{Token: eff.Token, SessionID: eff.SessionID, Result: models.SingleResult("late")})
	assert.False(t, late.Applied)
}

func TestIdeation(t *testing.T) {
	m := newTestMachine(t)

	assert.False(t, m.Apply(m.Start(), EnterIdeation{}).Applied)

	s := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	in := mustApply(t, m, s, EnterIdeation{})
	assert.Equal(t, models.ModeIdeation, in.Mode())

	// Nothing else goes through while the sub-dialog runs.
	assert.False(t, m.Apply(in, AnalyzeDescription{Text: "x"}).Applied)
	assert.False(t, m.Apply(in, GoBack{}).Applied)

	cancelled := mustApply(t, m, in, CancelIdeation{})
	assert.Equal(t, models.ModeInterview, cancelled.Mode())
	assert.Equal(t, "", cancelled.Draft)

	done := mustApply(t, m, in, CompleteIdeation{Description: "  A marketplace for local bakers  "})
	assert.Equal(t, PhaseQuestion, done.Phase)
	assert.Equal(t, "A marketplace for local bakers", done.Draft)
	assert.Equal(t, 1, done.Session.CurrentQuestionIndex)
	assert.Len(t, done.Session.Answers, 1)
}

func TestSuggestions(t *testing.T) {
	m := newTestMachine(t)

	early := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	assert.False(t, m.Apply(early, RequestSuggestion{}).Applied)

	s := atQuestion3(t, m)
	r := m.Apply(s, RequestSuggestion{Hint: "small teams"})
	require.True(t, r.Applied)
	require.Len(t, r.Effects, 1)
	eff := r.Effects[0].(Suggest)
	assert.Equal(t, 2, eff.QuestionIndex)
	assert.Equal(t, "small teams", eff.Hint)
	assert.Len(t, eff.PriorAnswers, 2)
	assert.True(t, r.State.Loading())

	// Only one request at a time.
	assert.False(t, m.Apply(r.State, RequestSuggestion{}).Applied)

	ready := mustApply(t, m, r.State, SuggestionReady{SessionID: eff.SessionID, QuestionIndex: eff.QuestionIndex, Text: "Freelancers"})
	assert.Equal(t, "Freelancers", ready.Suggestion)
	assert.False(t, ready.Loading())

	accepted := mustApply(t, m, ready, AcceptGeneratedAnswer{Text: ready.Suggestion})
	assert.True(t, accepted.Session.Answers[2].IsAIGenerated)
	assert.Equal(t, "", accepted.Suggestion)

	discarded := mustApply(t, m, ready, DiscardSuggestion{})
	assert.Equal(t, "", discarded.Suggestion)

	// A suggestion arriving after the user moved on is dropped.
	moved := mustApply(t, m, r.State, SubmitAnswer{Text: "typed"})
	late := m.Apply(moved, SuggestionReady{SessionID: eff.SessionID, QuestionIndex: eff.QuestionIndex, Text: "late"})
	assert.False(t, late.Applied)

	failed := mustApply(t, m, r.State, SuggestionFailed{SessionID: eff.SessionID, QuestionIndex: eff.QuestionIndex, Err: "boom"})
	assert.Equal(t, "boom", failed.Error)
	assert.False(t, failed.SuggestionPending)
}

func TestCompletion(t *testing.T) {
	m := newTestMachine(t)
	s := atQuestion3(t, m)
	total := m.Catalog().Len()

	for i := s.Session.CurrentQuestionIndex; i < total; i++ {
		assert.Equal(t, models.StatusInProgress, s.Session.Status)
		s = mustApply(t, m, s, SubmitAnswer{Text: fmt.Sprintf("answer %d", i)})
	}

	assert.Equal(t, models.StatusCompleted, s.Session.Status)
	assert.Equal(t, PhaseCompleted, s.Phase)
	assert.Equal(t, 100, m.Progress(s))
	assert.Len(t, s.Session.Answers, total)
	_, ok := m.Current(s)
	assert.False(t, ok)

	assert.False(t, m.Apply(s, SubmitAnswer{Text: "extra"}).Applied)

	back := mustApply(t, m, s, GoBack{})
	assert.Equal(t, PhaseQuestion, back.Phase)
	assert.Equal(t, models.StatusInProgress, back.Session.Status)
	assert.Equal(t, total-1, back.Session.CurrentQuestionIndex)
}

func TestProgress(t *testing.T) {
	m := newTestMachine(t)
	assert.Equal(t, 0, m.Progress(m.Start()))
	assert.Equal(t, 20, m.Progress(atQuestion3(t, m)))
}

// phaseStates drives the machine into one representative state per phase.
func phaseStates(t *testing.T, m *Machine) map[Phase]State {
	t.Helper()
	named := mustApply(t, m, m.Start(), SubmitAnswer{Text: "Invoicely"})
	analyzing := m.Apply(named, AnalyzeDescription{Text: "desc"}).State
	selecting, _ := analyze(t, m, named, models.MultipleResult(testUnits))

	completed := atQuestion3(t, m)
	for completed.Phase != PhaseCompleted {
		completed = mustApply(t, m, completed, SubmitAnswer{Text: "x"})
	}

	return map[Phase]State{
		PhaseQuestion:      atQuestion3(t, m),
		PhaseAnalyzing:     analyzing,
		PhaseUnitSelection: selecting,
		PhaseIdeation:      mustApply(t, m, named, EnterIdeation{}),
		PhaseCompleted:     completed,
	}
}

func sampleEvents(s State) map[EventKind]Event {
	id := s.Session.ID
	return map[EventKind]Event{
		KindSubmitAnswer:          SubmitAnswer{Text: "x"},
		KindAcceptGeneratedAnswer: AcceptGeneratedAnswer{Text: "x"},
		KindDeferFirstQuestion:    DeferFirstQuestion{},
		KindAnalyzeDescription:    AnalyzeDescription{Text: "x"},
		KindAnalysisSucceeded:     AnalysisSucceeded{Token: s.AnalysisToken, SessionID: id, Result: models.SingleResult("x")},
		KindAnalysisFailed:        AnalysisFailed{Token: s.AnalysisToken, SessionID: id, Err: "x"},
		KindSelectUnit:            SelectUnit{UnitID: 1},
		KindResolveDeferredName:   ResolveDeferredName{SessionID: id, Name: "x"},
		KindGoBack:                GoBack{},
		KindReset:                 Reset{},
		KindEnterIdeation:         EnterIdeation{},
		KindCancelIdeation:        CancelIdeation{},
		KindCompleteIdeation:      CompleteIdeation{Description: "x"},
		KindRequestSuggestion:     RequestSuggestion{},
		KindSuggestionReady:       SuggestionReady{SessionID: id, QuestionIndex: s.Session.CurrentQuestionIndex, Text: "x"},
		KindSuggestionFailed:      SuggestionFailed{SessionID: id, QuestionIndex: s.Session.CurrentQuestionIndex, Err: "x"},
		KindDiscardSuggestion:     DiscardSuggestion{},
		KindDismissError:          DismissError{},
	}
}

func TestTransitionTable_Exhaustive(t *testing.T) {
	m := newTestMachine(t)
	states := phaseStates(t, m)
	require.Len(t, states, len(AllPhases))

	for _, phase := range AllPhases {
		s := states[phase]
		require.Equal(t, phase, s.Phase)
		events := sampleEvents(s)
		require.Len(t, events, len(AllEventKinds))

		for _, kind := range AllEventKinds {
			t.Run(fmt.Sprintf("%s/%s", phase, kind), func(t *testing.T) {
				ev := events[kind]
				require.Equal(t, kind, ev.Kind())

				r := m.Apply(s, ev)
				assert.True(t, r.State.Phase.IsValid())
				if !Accepts(phase, kind) {
					assert.False(t, r.Applied)
					assert.Equal(t, "", cmp.Diff(s.Session, r.State.Session))
				}
				if r.Applied {
					assertStable(t, r.State)
				}
			})
		}
	}
}

func TestGate(t *testing.T) {
	m := newTestMachine(t)

	tests := []struct {
		name       string
		index      int
		text       string
		want       string
		wantReason RejectReason
	}{
		{"name is sanitized", 0, "  **Invoicely** ", "Invoicely", ""},
		{"name that sanitizes away", 0, "***", "", RejectEmpty},
		{"blank", 0, "   ", "", RejectEmpty},
		{"description too short", 1, "short", "", RejectValidation},
		{"description gibberish", 1, "asdfasdfasdfasdfasdf", "", RejectGibberish},
		{"description escaped", 1, "A *fast* tool that helps freelancers", `A \*fast\* tool that helps freelancers`, ""},
		{"later question", 2, "Freelancers who juggle clients", "Freelancers who juggle clients", ""},
		{"past the end", 10, "anything", "", RejectNoQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Gate(tt.index, tt.text)
			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var rejected *InputRejectedError
			require.True(t, errors.As(err, &rejected), "expected InputRejectedError, got %v", err)
			assert.Equal(t, tt.wantReason, rejected.Reason)
			assert.NotEmpty(t, rejected.Message)
		})
	}
}
