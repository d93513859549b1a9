// Package specs turns a completed interview into a markdown project
// specification and keeps an archive of everything generated.
package specs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/metrics"
	"github.com/modryn-studio/specifythat/internal/models"
	"github.com/modryn-studio/specifythat/internal/questions"
)

// ErrNotCompleted is returned when asked for a spec before the last
// question is answered.
var ErrNotCompleted = errors.New("interview is not completed")

// ErrNotFound is returned for an unknown archived spec.
var ErrNotFound = errors.New("spec not found")

const fallbackName = "project"

// Writer produces the markdown body.
type Writer interface {
	WriteSpec(ctx context.Context, summary string, answers []models.Answer) (string, error)
}

// Archive persists generated specs.
type Archive interface {
	Save(spec *models.Spec) error
	Get(id string) (*models.Spec, error)
	List(limit int) ([]models.Spec, error)
}

// Service generates and archives specs.
type Service struct {
	writer  Writer
	archive Archive
	metrics *metrics.Provider
	logger  *slog.Logger
}

func NewService(writer Writer, archive Archive, provider *metrics.Provider, logger *slog.Logger) *Service {
	return &Service{writer: writer, archive: archive, metrics: provider, logger: logger}
}

// Generate writes a spec for a completed interview and archives it. An
// archive failure is logged; the spec is still returned.
func (s *Service) Generate(ctx context.Context, state interview.State) (*models.Spec, error) {
	if state.Session.Status != models.StatusCompleted {
		return nil, ErrNotCompleted
	}

	sess := state.Session
	started := time.Now()
	md, err := s.writer.WriteSpec(ctx, sess.ProjectSummary, sess.Answers)
	s.metrics.ObserveCall("spec", started, err)
	if err != nil {
		return nil, fmt.Errorf("write spec: %w", err)
	}

	spec := &models.Spec{
		SessionID:   sess.ID,
		ProjectName: ProjectName(sess),
		UnitName:    unitName(sess),
		Markdown:    md,
		Answers:     append([]models.Answer(nil), sess.Answers...),
	}
	if s.archive != nil {
		if err := s.archive.Save(spec); err != nil {
			s.logger.Error("archive spec failed", "session", sess.ID, "error", err)
		} else {
			s.logger.Info("spec archived", "spec", spec.ID, "session", sess.ID, "project", spec.ProjectName)
		}
	}
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = time.Now()
	}
	return spec, nil
}

func (s *Service) Get(id string) (*models.Spec, error) {
	if s.archive == nil {
		return nil, ErrNotFound
	}
	spec, err := s.archive.Get(id)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, ErrNotFound
	}
	return spec, nil
}

func (s *Service) List(limit int) ([]models.Spec, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.List(limit)
}

// ProjectName is the answer to the name question, or "project".
func ProjectName(sess models.Session) string {
	if len(sess.Answers) > questions.NameIndex {
		if name := strings.TrimSpace(sess.Answers[questions.NameIndex].Answer); name != "" {
			return name
		}
	}
	return fallbackName
}

func unitName(sess models.Session) string {
	if sess.SelectedUnitID == nil {
		return ""
	}
	for _, u := range sess.AllUnits {
		if u.ID == *sess.SelectedUnitID {
			return u.Name
		}
	}
	return ""
}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Filename is a file name for saving spec, such as "invoicely-spec.md".
func Filename(spec *models.Spec) string {
	slug := strings.Trim(slugRegex.ReplaceAllString(strings.ToLower(spec.ProjectName), "-"), "-")
	if slug == "" {
		slug = fallbackName
	}
	return slug + "-spec.md"
}
