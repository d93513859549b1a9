package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/metrics"
	"github.com/modryn-studio/specifythat/internal/models"
)

// ErrNotFound is returned for an unknown interview handle.
var ErrNotFound = errors.New("interview not found")

// ServiceError wraps a failed language-service call. The interview state is
// unchanged apart from a dismissible error message.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Decomposer splits a project description into buildable units or
// condenses it into a single summary.
type Decomposer interface {
	Decompose(ctx context.Context, description, attachment string) (models.AnalysisResult, error)
}

// NameGenerator proposes a project name from a description.
type NameGenerator interface {
	GenerateName(ctx context.Context, description string) (string, error)
}

// AnswerGenerator drafts an answer for the user to accept or discard.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, req models.AnswerRequest) (string, error)
}

// Observer is called after every applied event with the interview's new
// state. It runs on the goroutine that applied the event.
type Observer func(id string, state interview.State)

// Options tunes the manager's background behaviour.
type Options struct {
	NameTimeout time.Duration
	IdleTTL     time.Duration
}

// Outcome is what a caller gets back from an operation.
type Outcome struct {
	State   interview.State
	Applied bool
}

type entry struct {
	mu      sync.Mutex
	state   interview.State
	touched time.Time
}

func (e *entry) snapshot() interview.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Manager holds live interviews in memory and runs the effects their
// transitions ask for.
type Manager struct {
	machine    *interview.Machine
	decomposer Decomposer
	namer      NameGenerator
	answers    AnswerGenerator
	metrics    *metrics.Provider
	opts       Options
	logger     *slog.Logger

	mu         sync.Mutex
	interviews map[string]*entry
	observers  []Observer

	background sync.WaitGroup
}

// NewManager creates an interview manager.
func NewManager(
	machine *interview.Machine,
	decomposer Decomposer,
	namer NameGenerator,
	answers AnswerGenerator,
	provider *metrics.Provider,
	opts Options,
	logger *slog.Logger,
) *Manager {
	if opts.NameTimeout <= 0 {
		opts.NameTimeout = 60 * time.Second
	}
	return &Manager{
		machine:    machine,
		decomposer: decomposer,
		namer:      namer,
		answers:    answers,
		metrics:    provider,
		opts:       opts,
		logger:     logger,
		interviews: make(map[string]*entry),
	}
}

// Machine exposes the state machine, mainly for catalog lookups.
func (m *Manager) Machine() *interview.Machine {
	return m.machine
}

// Observe registers fn to be told about state changes.
func (m *Manager) Observe(fn Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Start creates an interview and returns its handle. The handle stays the
// same across resets; the session id inside does not.
func (m *Manager) Start() (string, interview.State) {
	id := uuid.New().String()
	state := m.machine.Start()

	m.mu.Lock()
	m.interviews[id] = &entry{state: state, touched: timeNow()}
	n := len(m.interviews)
	m.mu.Unlock()

	m.metrics.SetActiveInterviews(n)
	m.logger.Info("interview started", "interview", id, "session", state.Session.ID)
	return id, state
}

// Get returns the current state of an interview.
func (m *Manager) Get(id string) (interview.State, error) {
	e, ok := m.lookup(id)
	if !ok {
		return interview.State{}, ErrNotFound
	}
	return e.snapshot(), nil
}

// Delete drops an interview. Background work still running for it finishes
// against the detached record.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.interviews[id]
	delete(m.interviews, id)
	n := len(m.interviews)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	m.metrics.SetActiveInterviews(n)
	return nil
}

// Count is the number of interviews in memory.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.interviews)
}

// Dispatch applies ev and runs the effects it produces. Analysis and
// suggestions are awaited; name resolution is left running in the
// background.
func (m *Manager) Dispatch(ctx context.Context, id string, ev interview.Event) (Outcome, error) {
	e, ok := m.lookup(id)
	if !ok {
		return Outcome{}, ErrNotFound
	}

	res := m.apply(id, e, ev)
	if !res.Applied {
		return Outcome{State: res.State}, nil
	}

	err := m.run(ctx, id, e, res.Effects)
	return Outcome{State: e.snapshot(), Applied: true}, err
}

// Wait blocks until background name resolutions have finished.
func (m *Manager) Wait() {
	m.background.Wait()
}

func (m *Manager) lookup(id string) (*entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.interviews[id]
	return e, ok
}

func (m *Manager) apply(id string, e *entry, ev interview.Event) interview.Result {
	e.mu.Lock()
	res := m.machine.Apply(e.state, ev)
	if res.Applied {
		e.state = res.State
	}
	e.touched = timeNow()
	e.mu.Unlock()

	m.metrics.Event(string(ev.Kind()), res.Applied)
	if res.Applied {
		m.notify(id, res.State)
	} else {
		m.logger.Debug("event ignored", "interview", id, "event", ev.Kind(), "phase", res.State.Phase)
	}
	return res
}

func (m *Manager) notify(id string, state interview.State) {
	m.mu.Lock()
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(id, state)
	}
}

func (m *Manager) run(ctx context.Context, id string, e *entry, effects []interview.Effect) error {
	var errs []error
	for _, eff := range effects {
		switch eff := eff.(type) {
		case interview.Analyze:
			errs = append(errs, m.runAnalyze(ctx, id, e, eff))
		case interview.Suggest:
			errs = append(errs, m.runSuggest(ctx, id, e, eff))
		case interview.ResolveName:
			m.startNameResolution(ctx, id, e, eff)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) runAnalyze(ctx context.Context, id string, e *entry, eff interview.Analyze) error {
	started := timeNow()
	result, err := m.decomposer.Decompose(ctx, eff.Description, eff.Attachment)
	m.metrics.ObserveCall("decompose", started, err)

	if err != nil {
		m.logger.Error("description analysis failed", "interview", id, "error", err)
		m.apply(id, e, interview.AnalysisFailed{
			Token:     eff.Token,
			SessionID: eff.SessionID,
			Err:       "Failed to analyze your description. Please try again.",
		})
		return &ServiceError{Op: "decompose", Err: err}
	}

	m.logger.Info("description analyzed", "interview", id, "type", result.Kind, "units", len(result.Units))
	res := m.apply(id, e, interview.AnalysisSucceeded{
		Token:     eff.Token,
		SessionID: eff.SessionID,
		Result:    result,
	})
	if !res.Applied {
		return nil
	}
	return m.run(ctx, id, e, res.Effects)
}

func (m *Manager) runSuggest(ctx context.Context, id string, e *entry, eff interview.Suggest) error {
	started := timeNow()
	text, err := m.answers.GenerateAnswer(ctx, models.AnswerRequest{
		Question:     eff.Question,
		PriorAnswers: eff.PriorAnswers,
		Hint:         eff.Hint,
	})
	m.metrics.ObserveCall("answer", started, err)

	if err != nil {
		m.logger.Error("answer generation failed", "interview", id, "error", err)
		m.apply(id, e, interview.SuggestionFailed{
			SessionID:     eff.SessionID,
			QuestionIndex: eff.QuestionIndex,
			Err:           "Failed to generate an answer. Please try again.",
		})
		return &ServiceError{Op: "generate answer", Err: err}
	}

	m.apply(id, e, interview.SuggestionReady{
		SessionID:     eff.SessionID,
		QuestionIndex: eff.QuestionIndex,
		Text:          text,
	})
	return nil
}

// startNameResolution generates the deferred project name without blocking
// the caller. Failure falls back to the default name silently.
func (m *Manager) startNameResolution(ctx context.Context, id string, e *entry, eff interview.ResolveName) {
	m.background.Add(1)
	go func() {
		defer m.background.Done()

		nameCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.NameTimeout)
		defer cancel()

		started := timeNow()
		name, err := m.namer.GenerateName(nameCtx, eff.Context)
		m.metrics.ObserveCall("name", started, err)
		if err != nil {
			m.logger.Warn("project name generation failed, using fallback", "interview", id, "error", err)
			m.metrics.NameFallback()
			name = models.FallbackProjectName
		}

		m.apply(id, e, interview.ResolveDeferredName{SessionID: eff.SessionID, Name: name})
	}()
}
