package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/modryn-studio/specifythat/internal/ideation"
	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/models"
	"github.com/modryn-studio/specifythat/internal/sessions"
	"github.com/modryn-studio/specifythat/internal/specs"
)

// Tool pairs a definition with its handler.
type Tool struct {
	Definition mcp.Tool
	Handle     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools implements the interview_* tools on top of the interview runtime.
type Tools struct {
	mgr      *sessions.Manager
	specs    *specs.Service
	ideation *ideation.Service
	logger   *slog.Logger
}

func NewTools(mgr *sessions.Manager, specSvc *specs.Service, ideationSvc *ideation.Service, logger *slog.Logger) *Tools {
	return &Tools{mgr: mgr, specs: specSvc, ideation: ideationSvc, logger: logger}
}

// All returns every tool in registration order.
func (t *Tools) All() []Tool {
	idArg := mcp.WithString("interview_id",
		mcp.Required(),
		mcp.Description("Interview ID returned by interview_start"),
	)

	return []Tool{
		{
			Definition: mcp.NewTool("interview_start",
				mcp.WithDescription("Start a new project interview. Returns the interview ID and the first question."),
			),
			Handle: t.start,
		},
		{
			Definition: mcp.NewTool("interview_status",
				mcp.WithDescription("Show where an interview stands: phase, progress, current question, pending suggestion or error."),
				idArg,
			),
			Handle: t.status,
		},
		{
			Definition: mcp.NewTool("interview_answer",
				mcp.WithDescription("Submit the user's answer to the current question. "+
					"Answering the description question runs an analysis that may split the idea into buildable units."),
				idArg,
				mcp.WithString("answer",
					mcp.Required(),
					mcp.Description("The user's answer, in their words"),
				),
				mcp.WithString("attachment",
					mcp.Description("Optional text of a document the user provided with their description"),
				),
			),
			Handle: t.answer,
		},
		{
			Definition: mcp.NewTool("interview_dont_know",
				mcp.WithDescription("The user doesn't know the answer. Skips the name question for now, "+
					"opens ideation on the description question, or suggests an answer for later questions."),
				idArg,
				mcp.WithString("hint",
					mcp.Description("Partial thoughts the suggestion should build on"),
				),
			),
			Handle: t.dontKnow,
		},
		{
			Definition: mcp.NewTool("interview_accept_suggestion",
				mcp.WithDescription("Accept the pending suggested answer as the user's answer."),
				idArg,
			),
			Handle: t.acceptSuggestion,
		},
		{
			Definition: mcp.NewTool("interview_select_unit",
				mcp.WithDescription("Choose which buildable unit to specify when the analysis found several."),
				idArg,
				mcp.WithNumber("unit_id",
					mcp.Required(),
					mcp.Description("ID of the unit, as listed in the interview status"),
				),
			),
			Handle: t.selectUnit,
		},
		{
			Definition: mcp.NewTool("interview_back",
				mcp.WithDescription("Go back one step. During analysis this abandons it."),
				idArg,
			),
			Handle: t.back,
		},
		{
			Definition: mcp.NewTool("interview_reset",
				mcp.WithDescription("Discard every answer and start the interview over."),
				idArg,
			),
			Handle: t.reset,
		},
		{
			Definition: mcp.NewTool("interview_ideation_complete",
				mcp.WithDescription("Fill the description question from ideation. Pass a finished description, "+
					"or the user's problem, audience and solution notes to have one drafted. "+
					"The draft still has to be submitted with interview_answer."),
				idArg,
				mcp.WithString("description",
					mcp.Description("A finished project description"),
				),
				mcp.WithString("problem",
					mcp.Description("What problem made the user want to build something"),
				),
				mcp.WithString("audience",
					mcp.Description("Who has the problem"),
				),
				mcp.WithString("solution",
					mcp.Description("The user's rough idea for solving it"),
				),
			),
			Handle: t.ideationComplete,
		},
		{
			Definition: mcp.NewTool("interview_generate_spec",
				mcp.WithDescription("Generate the markdown project spec for a completed interview."),
				idArg,
			),
			Handle: t.generateSpec,
		},
	}
}

func (t *Tools) start(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, state := t.mgr.Start()
	t.logger.Info("interview started", "interview", id, "transport", "mcp")
	return t.render(id, state, true), nil
}

func (t *Tools) status(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	state, err := t.mgr.Get(id)
	if err != nil {
		return failure(id, err), nil
	}
	return t.render(id, state, true), nil
}

func (t *Tools) answer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	out, err := t.mgr.Answer(ctx, id, req.GetString("answer", ""), req.GetString("attachment", ""))
	return t.outcome(id, out, err), nil
}

func (t *Tools) dontKnow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	out, err := t.mgr.DontKnow(ctx, id, req.GetString("hint", ""))
	return t.outcome(id, out, err), nil
}

func (t *Tools) acceptSuggestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	out, err := t.mgr.AcceptSuggestion(ctx, id)
	return t.outcome(id, out, err), nil
}

func (t *Tools) selectUnit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	unitID, ok := intArg(req, "unit_id")
	if !ok {
		return mcp.NewToolResultError("'unit_id' is required"), nil
	}
	out, err := t.mgr.SelectUnit(ctx, id, unitID)
	return t.outcome(id, out, err), nil
}

func (t *Tools) back(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	out, err := t.mgr.Back(ctx, id)
	return t.outcome(id, out, err), nil
}

func (t *Tools) reset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	out, err := t.mgr.Reset(ctx, id)
	return t.outcome(id, out, err), nil
}

func (t *Tools) ideationComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	description := strings.TrimSpace(req.GetString("description", ""))

	if description == "" {
		var notes []models.Answer
		for _, p := range ideation.Prompts {
			if v := strings.TrimSpace(req.GetString(p.Key, "")); v != "" {
				notes = append(notes, models.Answer{Question: p.Question, Answer: v})
			}
		}
		draft, err := t.ideation.Compose(ctx, notes)
		if errors.Is(err, ideation.ErrNoNotes) {
			return mcp.NewToolResultError("pass 'description' or at least one of 'problem', 'audience', 'solution'"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to draft description: %v", err)), nil
		}
		description = draft.Description
	}

	state, err := t.mgr.Get(id)
	if err != nil {
		return failure(id, err), nil
	}
	if state.Phase != interview.PhaseIdeation {
		out, err := t.mgr.EnterIdeation(ctx, id)
		if err != nil {
			return t.outcome(id, out, err), nil
		}
		if !out.Applied {
			return t.render(id, out.State, false), nil
		}
	}
	out, err := t.mgr.CompleteIdeation(ctx, id, description)
	return t.outcome(id, out, err), nil
}

func (t *Tools) generateSpec(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	state, err := t.mgr.Get(id)
	if err != nil {
		return failure(id, err), nil
	}
	spec, err := t.specs.Generate(ctx, state)
	switch {
	case errors.Is(err, specs.ErrNotCompleted):
		return mcp.NewToolResultError("the interview is not completed yet; answer the remaining questions first"), nil
	case err != nil:
		t.logger.Error("spec generation failed", "interview", id, "error", err)
		return mcp.NewToolResultError("Failed to generate spec"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Spec %s saved as %s\n\n%s", spec.ID, specs.Filename(spec), spec.Markdown)), nil
}

// outcome maps a runtime result to a tool result. Rejected input and
// collaborator failures are tool errors the agent can relay to the user.
func (t *Tools) outcome(id string, out sessions.Outcome, err error) *mcp.CallToolResult {
	var rejected *interview.InputRejectedError
	var svc *sessions.ServiceError
	switch {
	case err == nil:
		return t.render(id, out.State, out.Applied)
	case errors.As(err, &rejected):
		return mcp.NewToolResultError(rejected.Message)
	case errors.As(err, &svc):
		msg := out.State.Error
		if msg == "" {
			msg = svc.Error()
		}
		return mcp.NewToolResultError(msg)
	default:
		return failure(id, err)
	}
}

func failure(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, sessions.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("interview %q not found; start a new one with interview_start", id))
	}
	return mcp.NewToolResultError(err.Error())
}

type statusView struct {
	InterviewID    string                 `json:"interview_id"`
	Applied        bool                   `json:"applied"`
	Phase          interview.Phase        `json:"phase"`
	Progress       int                    `json:"progress"`
	QuestionNumber int                    `json:"question_number,omitempty"`
	TotalQuestions int                    `json:"total_questions"`
	Question       string                 `json:"question,omitempty"`
	HelpText       string                 `json:"help_text,omitempty"`
	Suggestion     string                 `json:"suggestion,omitempty"`
	Draft          string                 `json:"draft,omitempty"`
	Error          string                 `json:"error,omitempty"`
	Units          []models.BuildableUnit `json:"units,omitempty"`
	Answers        []models.Answer        `json:"answers,omitempty"`
}

func (t *Tools) render(id string, state interview.State, applied bool) *mcp.CallToolResult {
	machine := t.mgr.Machine()
	v := statusView{
		InterviewID:    id,
		Applied:        applied,
		Phase:          state.Phase,
		Progress:       machine.Progress(state),
		TotalQuestions: machine.Catalog().Len(),
		Suggestion:     state.Suggestion,
		Draft:          state.Draft,
		Error:          state.Error,
	}
	if q, ok := machine.Current(state); ok && state.Phase == interview.PhaseQuestion {
		v.QuestionNumber = state.Session.CurrentQuestionIndex + 1
		v.Question = q.Text
		v.HelpText = q.HelpText
	}
	if state.Phase == interview.PhaseUnitSelection && state.Analysis != nil {
		v.Units = state.Analysis.Units
	}
	if state.Phase == interview.PhaseCompleted {
		v.Answers = state.Session.Answers
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode status: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// intArg reads a numeric argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string) (int, bool) {
	switch v := req.GetArguments()[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
