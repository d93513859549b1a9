package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modryn-studio/specifythat/internal/models"
)

const maxAttachmentChars = 32000

// Decomposer decides whether a description is one project or several
// buildable units.
type Decomposer struct {
	gen Generator
}

func NewDecomposer(gen Generator) *Decomposer {
	return &Decomposer{gen: gen}
}

type decomposeResponse struct {
	Type    string                 `json:"type"`
	Summary string                 `json:"summary"`
	Units   []models.BuildableUnit `json:"units"`
}

func (d *Decomposer) Decompose(ctx context.Context, description, attachment string) (models.AnalysisResult, error) {
	extra := ""
	if strings.TrimSpace(attachment) != "" {
		extra = fmt.Sprintf(attachmentSection, truncate(attachment, maxAttachmentChars))
	}

	reply, err := d.gen.Generate(ctx, decomposeSystem, fmt.Sprintf(decomposePrompt, description, extra))
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return parseDecomposition(reply)
}

// parseDecomposition validates the model's JSON. A "multiple" reply with a
// single usable unit is treated as a single project.
func parseDecomposition(reply string) (models.AnalysisResult, error) {
	raw, err := extractJSON(reply)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	var resp decomposeResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("invalid JSON: %w", err)
	}

	switch models.AnalysisKind(strings.ToLower(strings.TrimSpace(resp.Type))) {
	case models.AnalysisSingle:
		summary := strings.TrimSpace(resp.Summary)
		if summary == "" {
			return models.AnalysisResult{}, fmt.Errorf("single result has no summary")
		}
		return models.SingleResult(summary), nil

	case models.AnalysisMultiple:
		units := make([]models.BuildableUnit, 0, len(resp.Units))
		for _, u := range resp.Units {
			u.Name = strings.TrimSpace(u.Name)
			u.Description = strings.TrimSpace(u.Description)
			if u.Description == "" {
				continue
			}
			if u.Name == "" {
				u.Name = fmt.Sprintf("Unit %d", len(units)+1)
			}
			units = append(units, u)
		}
		switch len(units) {
		case 0:
			return models.AnalysisResult{}, fmt.Errorf("multiple result has no usable units")
		case 1:
			return models.SingleResult(units[0].Description), nil
		}
		renumber(units)
		return models.MultipleResult(units), nil
	}

	return models.AnalysisResult{}, fmt.Errorf("unknown result type %q", resp.Type)
}

// renumber assigns ids 1..n when the model left them missing or duplicated.
func renumber(units []models.BuildableUnit) {
	seen := make(map[int]bool, len(units))
	ok := true
	for _, u := range units {
		if u.ID <= 0 || seen[u.ID] {
			ok = false
			break
		}
		seen[u.ID] = true
	}
	if ok {
		return
	}
	for i := range units {
		units[i].ID = i + 1
	}
}
