package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/afero"

	"github.com/modryn-studio/specifythat/internal/ideation"
	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/models"
	"github.com/modryn-studio/specifythat/internal/sessions"
	"github.com/modryn-studio/specifythat/internal/specs"
)

// Options wires the terminal UI to the interview runtime.
type Options struct {
	Manager  *sessions.Manager
	Specs    *specs.Service
	Ideation *ideation.Service
	Fs       afero.Fs
	OutDir   string
	Logger   *slog.Logger
}

// ViewMode represents the current view
type ViewMode int

const (
	ViewModeInterview ViewMode = iota
	ViewModeHelp
)

// Messages
type outcomeMsg struct {
	out sessions.Outcome
	err error
}

// stateChangedMsg carries notifications from the manager, including
// background name resolution.
type stateChangedMsg struct {
	id    string
	state interview.State
}

type draftMsg struct {
	draft ideation.Draft
	err   error
}

type specMsg struct {
	spec     *models.Spec
	rendered string
	err      error
}

type savedMsg struct {
	path string
	size int
	err  error
}

type attachedMsg struct {
	name    string
	content string
	err     error
}

type stageTickMsg struct{}

// Rotated while a description is being analyzed.
var analysisStages = []string{
	"Reading your description",
	"Understanding project scope",
	"Identifying buildable units",
	"Preparing next steps",
}

const stageInterval = 2500 * time.Millisecond

type attachment struct {
	name    string
	content string
}

// Model is the root Bubble Tea model
type Model struct {
	width  int
	height int
	ready  bool

	viewMode ViewMode
	opts     Options
	keys     KeyMap

	help     help.Model
	input    textarea.Model
	spinner  spinner.Model
	progress progress.Model
	viewport viewport.Model

	id    string
	state interview.State

	busy       bool
	inputError string
	notice     string
	attachment *attachment
	unitCursor int
	stage      int

	flow  *ideation.Flow
	draft *ideation.Draft

	spec     *models.Spec
	specView bool
}

func NewModel(opts Options) Model {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Type your answer…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 10000
	ta.SetHeight(4)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StageStyle

	id, state := opts.Manager.Start()

	m := Model{
		opts:     opts,
		keys:     keys,
		help:     help.New(),
		input:    ta,
		spinner:  sp,
		progress: progress.New(progress.WithSolidFill(string(ColorGreen)), progress.WithoutPercentage(), progress.WithWidth(40)),
		viewport: viewport.New(80, 20),
		id:       id,
	}
	m.setState(state)
	return m
}

// Run starts the interview in the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	opts.Manager.Observe(func(id string, st interview.State) {
		p.Send(stateChangedMsg{id: id, state: st})
	})
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func stageTickCmd() tea.Cmd {
	return tea.Tick(stageInterval, func(time.Time) tea.Msg {
		return stageTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		inputWidth := m.width - 6
		if inputWidth < 20 {
			inputWidth = 20
		}
		m.input.SetWidth(inputWidth)
		m.progress.Width = min(40, inputWidth)
		m.help.Width = m.width
		m.viewport.Width = m.width - 2
		m.viewport.Height = max(1, m.height-6)
		if m.spec != nil {
			m.viewport.SetContent(m.renderMarkdown(m.spec.Markdown))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case outcomeMsg:
		m.busy = false
		cmds = append(cmds, m.applyOutcome(msg))

	case stateChangedMsg:
		if msg.id == m.id {
			cmds = append(cmds, m.setState(msg.state))
		}

	case draftMsg:
		m.busy = false
		if msg.err != nil {
			m.inputError = msg.err.Error()
			break
		}
		d := msg.draft
		m.draft = &d
		m.input.SetValue(d.Description)

	case specMsg:
		m.busy = false
		if msg.err != nil {
			m.inputError = "Failed to generate spec. Press ctrl+g to try again."
			m.opts.Logger.Error("spec generation failed", "error", msg.err)
			break
		}
		m.spec = msg.spec
		m.specView = true
		m.viewport.SetContent(msg.rendered)
		m.viewport.GotoTop()

	case savedMsg:
		if msg.err != nil {
			m.inputError = "Could not save spec: " + msg.err.Error()
			break
		}
		m.notice = fmt.Sprintf("Saved %s (%s)", msg.path, humanBytes(msg.size))

	case attachedMsg:
		if msg.err != nil {
			m.inputError = msg.err.Error()
			break
		}
		m.attachment = &attachment{name: msg.name, content: msg.content}
		m.notice = "Attached " + msg.name

	case stageTickMsg:
		if m.state.Phase == interview.PhaseAnalyzing {
			m.stage = (m.stage + 1) % len(analysisStages)
			cmds = append(cmds, stageTickCmd())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		if m.viewMode == ViewModeHelp {
			m.viewMode = ViewModeInterview
		} else {
			m.viewMode = ViewModeHelp
		}
		return m, nil
	}
	if m.viewMode == ViewModeHelp {
		if key.Matches(msg, m.keys.Escape) {
			m.viewMode = ViewModeInterview
		}
		return m, nil
	}

	// Leaving an analysis in flight is allowed; its late result is dropped.
	if m.state.Phase == interview.PhaseAnalyzing {
		if key.Matches(msg, m.keys.Back, m.keys.Escape) {
			return m, m.op(func(ctx context.Context) (sessions.Outcome, error) {
				return m.opts.Manager.Back(ctx, m.id)
			})
		}
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch m.state.Phase {
	case interview.PhaseUnitSelection:
		return m.handleUnitKey(msg)
	case interview.PhaseIdeation:
		return m.handleIdeationKey(msg)
	case interview.PhaseCompleted:
		if cmd, ok := m.handleCompletedKey(msg); ok {
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit(m.input.Value())
	case key.Matches(msg, m.keys.DontKnow):
		return m, m.dontKnow()
	case key.Matches(msg, m.keys.Back):
		return m, m.back()
	case key.Matches(msg, m.keys.Accept) && m.state.Suggestion != "":
		return m, m.op(func(ctx context.Context) (sessions.Outcome, error) {
			return m.opts.Manager.AcceptSuggestion(ctx, m.id)
		})
	case key.Matches(msg, m.keys.Discard) && m.state.Suggestion != "":
		return m, m.op(func(ctx context.Context) (sessions.Outcome, error) {
			return m.opts.Manager.DiscardSuggestion(ctx, m.id)
		})
	case key.Matches(msg, m.keys.Escape):
		if m.state.Error != "" {
			return m, m.op(func(ctx context.Context) (sessions.Outcome, error) {
				return m.opts.Manager.DismissError(ctx, m.id)
			})
		}
		m.inputError = ""
		m.notice = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleUnitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var units []models.BuildableUnit
	if m.state.Analysis != nil {
		units = m.state.Analysis.Units
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.unitCursor > 0 {
			m.unitCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.unitCursor < len(units)-1 {
			m.unitCursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.unitCursor < len(units) {
			unitID := units[m.unitCursor].ID
			return m, m.op(func(ctx context.Context) (sessions.Outcome, error) {
				return m.opts.Manager.SelectUnit(ctx, m.id, unitID)
			})
		}
	case key.Matches(msg, m.keys.Back, m.keys.Escape):
		return m, m.back()
	}
	return m, nil
}

func (m Model) handleIdeationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m, m.op(func(ctx context.Context) (sessions.Outcome, error) {
			return m.opts.Manager.CancelIdeation(ctx, m.id)
		})
	case key.Matches(msg, m.keys.Back):
		if m.draft != nil {
			m.draft = nil
			m.flow.Back()
			m.input.Reset()
			return m, nil
		}
		if m.flow.Back() {
			m.input.Reset()
			return m, nil
		}
		return m, m.op(func(ctx context.Context) (sessions.Outcome, error) {
			return m.opts.Manager.CancelIdeation(ctx, m.id)
		})
	case key.Matches(msg, m.keys.Submit):
		return m, m.ideationSubmit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ideationSubmit answers the current guiding prompt, composes the draft once
// all are answered, and hands an accepted draft back to the interview.
func (m *Model) ideationSubmit(text string) tea.Cmd {
	m.inputError = ""
	if m.draft != nil {
		description := strings.TrimSpace(text)
		return m.op(func(ctx context.Context) (sessions.Outcome, error) {
			return m.opts.Manager.CompleteIdeation(ctx, m.id, description)
		})
	}
	if err := m.flow.Answer(text); err != nil {
		m.inputError = err.Error()
		return nil
	}
	m.input.Reset()
	if !m.flow.Done() {
		return nil
	}

	m.busy = true
	notes := m.flow.Notes()
	svc := m.opts.Ideation
	return func() tea.Msg {
		d, err := svc.Compose(context.Background(), notes)
		return draftMsg{draft: d, err: err}
	}
}

func (m *Model) handleCompletedKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Generate):
		return m.generateSpec(), true
	case key.Matches(msg, m.keys.Save) && m.spec != nil:
		return m.saveSpec(), true
	case m.specView && key.Matches(msg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd, true
	case m.specView && key.Matches(msg, m.keys.Escape):
		m.specView = false
		return nil, true
	}
	return nil, false
}

// submit handles the answer box: slash commands or an answer.
func (m *Model) submit(raw string) tea.Cmd {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "/") {
		return m.command(text)
	}
	if m.state.Phase != interview.PhaseQuestion {
		return nil
	}

	content := ""
	if m.attachment != nil {
		content = m.attachment.content
	}
	return m.op(func(ctx context.Context) (sessions.Outcome, error) {
		return m.opts.Manager.Answer(ctx, m.id, raw, content)
	})
}

func (m *Model) command(text string) tea.Cmd {
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	m.input.Reset()

	switch name {
	case "/skip":
		return m.dontKnow()
	case "/back":
		return m.back()
	case "/reset":
		m.attachment = nil
		m.spec = nil
		m.specView = false
		return m.op(func(ctx context.Context) (sessions.Outcome, error) {
			return m.opts.Manager.Reset(ctx, m.id)
		})
	case "/attach":
		return m.attach(arg)
	case "/ideate":
		return m.op(func(ctx context.Context) (sessions.Outcome, error) {
			return m.opts.Manager.EnterIdeation(ctx, m.id)
		})
	case "/help":
		m.viewMode = ViewModeHelp
		return nil
	default:
		m.inputError = fmt.Sprintf("Unknown command %s. Try /skip, /back, /reset, /ideate, /attach <file>.", name)
		return nil
	}
}

func (m *Model) dontKnow() tea.Cmd {
	if m.state.Phase != interview.PhaseQuestion {
		return nil
	}
	hint := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(hint, "/") {
		hint = ""
	}
	return m.op(func(ctx context.Context) (sessions.Outcome, error) {
		return m.opts.Manager.DontKnow(ctx, m.id, hint)
	})
}

func (m *Model) back() tea.Cmd {
	m.specView = false
	return m.op(func(ctx context.Context) (sessions.Outcome, error) {
		return m.opts.Manager.Back(ctx, m.id)
	})
}

// attach reads a file for the current question, checking the question
// takes uploads of that type.
func (m *Model) attach(path string) tea.Cmd {
	q, ok := m.opts.Manager.Machine().Current(m.state)
	if !ok || !q.AllowFileUpload {
		m.inputError = "This question does not accept file uploads."
		return nil
	}
	if path == "" {
		m.inputError = "Usage: /attach <file>"
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if len(q.FileTypes) > 0 && !slices.Contains(q.FileTypes, ext) {
		m.inputError = fmt.Sprintf("Only %s files can be attached.", strings.Join(q.FileTypes, ", "))
		return nil
	}

	fs := m.opts.Fs
	limit := q.MaxFileSize
	return func() tea.Msg {
		info, err := fs.Stat(path)
		if err != nil {
			return attachedMsg{err: fmt.Errorf("cannot read %s", path)}
		}
		if limit > 0 && info.Size() > limit {
			return attachedMsg{err: fmt.Errorf("File must be %d KB or smaller", limit/1024)}
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return attachedMsg{err: fmt.Errorf("cannot read %s", path)}
		}
		return attachedMsg{name: filepath.Base(path), content: string(data)}
	}
}

func (m *Model) generateSpec() tea.Cmd {
	if m.opts.Specs == nil {
		return nil
	}
	m.busy = true
	m.inputError = ""
	state := m.state
	svc := m.opts.Specs
	width := m.width
	return func() tea.Msg {
		spec, err := svc.Generate(context.Background(), state)
		if err != nil {
			return specMsg{err: err}
		}
		return specMsg{spec: spec, rendered: renderMarkdown(spec.Markdown, width)}
	}
}

func (m *Model) saveSpec() tea.Cmd {
	fs := m.opts.Fs
	dir := m.opts.OutDir
	spec := m.spec
	return func() tea.Msg {
		path := filepath.Join(dir, specs.Filename(spec))
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return savedMsg{err: err}
		}
		if err := afero.WriteFile(fs, path, []byte(spec.Markdown), 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path, size: len(spec.Markdown)}
	}
}

// op runs a runtime operation off the UI goroutine.
func (m *Model) op(fn func(ctx context.Context) (sessions.Outcome, error)) tea.Cmd {
	m.busy = true
	m.inputError = ""
	m.notice = ""
	return func() tea.Msg {
		out, err := fn(context.Background())
		return outcomeMsg{out: out, err: err}
	}
}

func (m *Model) applyOutcome(msg outcomeMsg) tea.Cmd {
	var rejected *interview.InputRejectedError
	switch {
	case msg.err == nil:
	case errors.As(msg.err, &rejected):
		m.inputError = rejected.Message
	case errors.Is(msg.err, sessions.ErrNotFound):
		m.inputError = "This interview has expired. Type /reset to start over."
		return nil
	default:
		// Service failures surface through state.Error.
		m.opts.Logger.Warn("interview operation failed", "interview", m.id, "error", msg.err)
	}

	if msg.out.Applied && m.attachment != nil && msg.out.State.Session.CurrentQuestionIndex != m.state.Session.CurrentQuestionIndex {
		m.attachment = nil
	}

	// Background work may have moved on since the outcome was captured.
	latest, err := m.opts.Manager.Get(m.id)
	if err != nil {
		latest = msg.out.State
	}
	return m.setState(latest)
}

// setState adopts a new interview state and resets per-screen UI state
// when the screen changes.
func (m *Model) setState(next interview.State) tea.Cmd {
	prev := m.state
	m.state = next

	var cmd tea.Cmd
	screenChanged := prev.Phase != next.Phase ||
		prev.Session.ID != next.Session.ID ||
		prev.Session.CurrentQuestionIndex != next.Session.CurrentQuestionIndex

	switch next.Phase {
	case interview.PhaseAnalyzing:
		if prev.Phase != interview.PhaseAnalyzing {
			m.stage = 0
			cmd = stageTickCmd()
		}
	case interview.PhaseUnitSelection:
		if screenChanged {
			m.unitCursor = 0
		}
	case interview.PhaseIdeation:
		if prev.Phase != interview.PhaseIdeation {
			m.flow = ideation.NewFlow()
			m.draft = nil
			m.input.Reset()
		}
	case interview.PhaseQuestion:
		// A failed or aborted analysis keeps the description for editing.
		retry := prev.Phase == interview.PhaseAnalyzing &&
			prev.Session.CurrentQuestionIndex == next.Session.CurrentQuestionIndex
		switch {
		case next.Draft != "" && next.Draft != prev.Draft:
			m.input.SetValue(next.Draft)
		case screenChanged && !retry:
			m.input.Reset()
		}
	case interview.PhaseCompleted:
		if screenChanged {
			m.input.Reset()
		}
	}
	return cmd
}

func (m Model) renderMarkdown(md string) string {
	return renderMarkdown(md, m.width)
}

func renderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
