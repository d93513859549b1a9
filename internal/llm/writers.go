package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/modryn-studio/specifythat/internal/models"
)

// Composer turns ideation notes into a project description.
type Composer struct {
	gen Generator
}

func NewComposer(gen Generator) *Composer {
	return &Composer{gen: gen}
}

func (c *Composer) ComposeDescription(ctx context.Context, notes []models.Answer) (string, error) {
	return c.gen.Generate(ctx, composeSystem, fmt.Sprintf(composePrompt, formatAnswers(notes)))
}

// SpecWriter writes the final markdown specification.
type SpecWriter struct {
	gen Generator
}

func NewSpecWriter(gen Generator) *SpecWriter {
	return &SpecWriter{gen: gen}
}

func (w *SpecWriter) WriteSpec(ctx context.Context, summary string, answers []models.Answer) (string, error) {
	if strings.TrimSpace(summary) == "" {
		summary = "(not provided)"
	}
	md, err := w.gen.Generate(ctx, specSystem, fmt.Sprintf(specPrompt, summary, formatAnswers(answers)))
	if err != nil {
		return "", err
	}
	return stripFence(md), nil
}

// stripFence removes a ```markdown wrapper some models add.
func stripFence(md string) string {
	md = strings.TrimSpace(md)
	if !strings.HasPrefix(md, "```") {
		return md
	}
	if i := strings.Index(md, "\n"); i >= 0 {
		md = md[i+1:]
	}
	md = strings.TrimSuffix(strings.TrimSpace(md), "```")
	return strings.TrimSpace(md)
}
