package llm

import (
	"fmt"
	"strings"

	"github.com/modryn-studio/specifythat/internal/models"
)

// extractJSON pulls the JSON object out of a model reply that may wrap it in
// a markdown code block or surrounding prose.
func extractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```") {
		lines := strings.Split(response, "\n")
		var jsonLines []string
		inBlock := false
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inBlock = !inBlock
				continue
			}
			if inBlock {
				jsonLines = append(jsonLines, line)
			}
		}
		if len(jsonLines) > 0 {
			response = strings.Join(jsonLines, "\n")
		}
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON found in response")
	}
	return response[start : end+1], nil
}

// formatAnswers renders question/answer pairs for a prompt.
func formatAnswers(answers []models.Answer) string {
	if len(answers) == 0 {
		return "(none yet)\n"
	}
	var sb strings.Builder
	for _, a := range answers {
		answer := strings.TrimSpace(a.Answer)
		if answer == "" {
			answer = "(skipped)"
		}
		fmt.Fprintf(&sb, "Q: %s\nA: %s\n\n", a.Question, answer)
	}
	return sb.String()
}

// truncate keeps the head and tail of long text.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	head := limit / 4
	tail := limit - head
	return text[:head] + "\n\n[... middle truncated ...]\n\n" + text[len(text)-tail:]
}
