// Package ideation helps a user who cannot describe their project yet. Three
// guiding prompts are answered one at a time and composed into a draft
// description for the user to review before it is submitted.
package ideation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/modryn-studio/specifythat/internal/models"
)

// ErrEmptyAnswer is returned when a prompt is answered with blank text.
var ErrEmptyAnswer = errors.New("please write something before continuing")

// ErrNoNotes is returned when composing from notes that are all blank.
var ErrNoNotes = errors.New("nothing to compose from")

const maxDescriptionRunes = 5000

// Prompt is one guiding question.
type Prompt struct {
	Key         string `json:"key"`
	Question    string `json:"question"`
	Placeholder string `json:"placeholder"`
}

// Prompts are asked in order.
var Prompts = []Prompt{
	{
		Key:         "problem",
		Question:    "What problem or frustration made you want to build something?",
		Placeholder: "e.g. I lose track of which clients have paid me",
	},
	{
		Key:         "audience",
		Question:    "Who has this problem?",
		Placeholder: "e.g. freelance designers with a handful of clients",
	},
	{
		Key:         "solution",
		Question:    "What rough idea do you have for solving it?",
		Placeholder: "e.g. a simple app that sends invoices and reminders",
	},
}

// Flow walks through the prompts. It is not safe for concurrent use.
type Flow struct {
	answers []string
}

func NewFlow() *Flow {
	return &Flow{}
}

// Current returns the prompt waiting for an answer.
func (f *Flow) Current() (Prompt, bool) {
	if f.Done() {
		return Prompt{}, false
	}
	return Prompts[len(f.answers)], true
}

// Step is the 1-based number of the current prompt.
func (f *Flow) Step() int {
	return min(len(f.answers)+1, len(Prompts))
}

func (f *Flow) Total() int {
	return len(Prompts)
}

func (f *Flow) Done() bool {
	return len(f.answers) >= len(Prompts)
}

// Answer records text for the current prompt.
func (f *Flow) Answer(text string) error {
	if f.Done() {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}
	f.answers = append(f.answers, text)
	return nil
}

// Back forgets the last answer. It reports false on the first prompt.
func (f *Flow) Back() bool {
	if len(f.answers) == 0 {
		return false
	}
	f.answers = f.answers[:len(f.answers)-1]
	return true
}

// Notes pairs each answered prompt with its answer.
func (f *Flow) Notes() []models.Answer {
	notes := make([]models.Answer, len(f.answers))
	for i, a := range f.answers {
		notes[i] = models.Answer{Question: Prompts[i].Question, Answer: a}
	}
	return notes
}

// Composer writes a description from ideation notes.
type Composer interface {
	ComposeDescription(ctx context.Context, notes []models.Answer) (string, error)
}

// Draft is a composed description.
type Draft struct {
	Description string `json:"description"`
	Generated   bool   `json:"generated"`
}

// Service composes drafts, falling back to a fixed template when the
// language service is missing or fails.
type Service struct {
	composer Composer
	logger   *slog.Logger
}

func NewService(composer Composer, logger *slog.Logger) *Service {
	return &Service{composer: composer, logger: logger}
}

func (s *Service) Compose(ctx context.Context, notes []models.Answer) (Draft, error) {
	if !hasContent(notes) {
		return Draft{}, ErrNoNotes
	}

	if s.composer != nil {
		text, err := s.composer.ComposeDescription(ctx, notes)
		if err == nil && strings.TrimSpace(text) != "" {
			return Draft{Description: limit(strings.TrimSpace(text)), Generated: true}, nil
		}
		if err != nil {
			s.logger.Warn("description compose failed, using template", "error", err)
		}
	}
	return Draft{Description: Template(notes)}, nil
}

// Template builds a plain description from the notes without a model.
func Template(notes []models.Answer) string {
	byKey := make(map[string]string, len(notes))
	for i, n := range notes {
		key := keyFor(n.Question)
		if key == "" && i < len(Prompts) {
			key = Prompts[i].Key
		}
		byKey[key] = strings.TrimRight(strings.TrimSpace(n.Answer), ".!? ")
	}

	var parts []string
	if v := byKey["solution"]; v != "" {
		parts = append(parts, upperFirst(v)+".")
	}
	if v := byKey["audience"]; v != "" {
		parts = append(parts, "It is for "+v+".")
	}
	if v := byKey["problem"]; v != "" {
		parts = append(parts, "It addresses this problem: "+v+".")
	}
	return limit(strings.Join(parts, " "))
}

func keyFor(question string) string {
	for _, p := range Prompts {
		if p.Question == question {
			return p.Key
		}
	}
	return ""
}

func hasContent(notes []models.Answer) bool {
	for _, n := range notes {
		if strings.TrimSpace(n.Answer) != "" {
			return true
		}
	}
	return false
}

func upperFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

func limit(s string) string {
	r := []rune(s)
	if len(r) <= maxDescriptionRunes {
		return s
	}
	return strings.TrimSpace(string(r[:maxDescriptionRunes]))
}
