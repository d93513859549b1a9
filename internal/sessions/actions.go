package sessions

import (
	"context"
	"errors"

	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/questions"
)

// Answer submits text for the current question. The description question
// goes through analysis; every other question is recorded directly. Input
// failing validation or the gibberish check returns an
// *interview.InputRejectedError and leaves the interview untouched.
func (m *Manager) Answer(ctx context.Context, id, text, attachment string) (Outcome, error) {
	state, err := m.Get(id)
	if err != nil {
		return Outcome{}, err
	}
	if state.Phase != interview.PhaseQuestion {
		return Outcome{State: state}, nil
	}

	idx := state.Session.CurrentQuestionIndex
	cleaned, err := m.machine.Gate(idx, text)
	if err == nil {
		err = m.machine.GateAttachment(idx, attachment)
	}
	if err != nil {
		var rejected *interview.InputRejectedError
		if errors.As(err, &rejected) {
			m.metrics.InputRejected(string(rejected.Reason))
		}
		return Outcome{State: state}, err
	}

	if idx == questions.DescriptionIndex {
		return m.Dispatch(ctx, id, interview.AnalyzeDescription{Text: cleaned, Attachment: attachment})
	}
	return m.Dispatch(ctx, id, interview.SubmitAnswer{Text: cleaned})
}

// DontKnow is the "I don't know" action: it defers the name question, opens
// ideation on the description question and asks for a suggestion anywhere
// else.
func (m *Manager) DontKnow(ctx context.Context, id, hint string) (Outcome, error) {
	state, err := m.Get(id)
	if err != nil {
		return Outcome{}, err
	}

	switch state.Session.CurrentQuestionIndex {
	case questions.NameIndex:
		return m.Dispatch(ctx, id, interview.DeferFirstQuestion{})
	case questions.DescriptionIndex:
		return m.Dispatch(ctx, id, interview.EnterIdeation{})
	default:
		return m.Dispatch(ctx, id, interview.RequestSuggestion{Hint: hint})
	}
}

// AcceptSuggestion records the pending suggestion as a generated answer.
func (m *Manager) AcceptSuggestion(ctx context.Context, id string) (Outcome, error) {
	state, err := m.Get(id)
	if err != nil {
		return Outcome{}, err
	}
	if state.Suggestion == "" {
		return Outcome{State: state}, nil
	}
	return m.Dispatch(ctx, id, interview.AcceptGeneratedAnswer{Text: state.Suggestion})
}

// SelectUnit picks which buildable unit the rest of the interview is about.
func (m *Manager) SelectUnit(ctx context.Context, id string, unitID int) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.SelectUnit{UnitID: unitID})
}

// Back steps to the previous question, or aborts a running analysis.
func (m *Manager) Back(ctx context.Context, id string) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.GoBack{})
}

// Reset starts the interview over with a fresh session.
func (m *Manager) Reset(ctx context.Context, id string) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.Reset{})
}

func (m *Manager) EnterIdeation(ctx context.Context, id string) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.EnterIdeation{})
}

// CompleteIdeation leaves ideation with description as the draft answer to
// the description question. Nothing is submitted.
func (m *Manager) CompleteIdeation(ctx context.Context, id, description string) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.CompleteIdeation{Description: description})
}

func (m *Manager) CancelIdeation(ctx context.Context, id string) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.CancelIdeation{})
}

func (m *Manager) DiscardSuggestion(ctx context.Context, id string) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.DiscardSuggestion{})
}

func (m *Manager) DismissError(ctx context.Context, id string) (Outcome, error) {
	return m.Dispatch(ctx, id, interview.DismissError{})
}
