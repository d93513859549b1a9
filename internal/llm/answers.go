package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/modryn-studio/specifythat/internal/models"
)

// DefaultHint is sent when the user asks for help without saying anything.
const DefaultHint = "I don't know"

// Answerer drafts answers to interview questions from earlier answers.
type Answerer struct {
	gen Generator
}

func NewAnswerer(gen Generator) *Answerer {
	return &Answerer{gen: gen}
}

func (a *Answerer) GenerateAnswer(ctx context.Context, req models.AnswerRequest) (string, error) {
	hint := strings.TrimSpace(req.Hint)
	if hint == "" {
		hint = DefaultHint
	}
	prompt := fmt.Sprintf(answerPrompt, formatAnswers(req.PriorAnswers), req.Question, hint)
	return a.gen.Generate(ctx, answerSystem, prompt)
}

const nameHint = "I don't know - please suggest a name based on the project description"

// Namer suggests a project name by asking the name question on the user's
// behalf, with the description as the only prior answer.
type Namer struct {
	answerer            *Answerer
	nameQuestion        string
	descriptionQuestion string
}

func NewNamer(answerer *Answerer, nameQuestion, descriptionQuestion string) *Namer {
	return &Namer{
		answerer:            answerer,
		nameQuestion:        nameQuestion,
		descriptionQuestion: descriptionQuestion,
	}
}

func (n *Namer) GenerateName(ctx context.Context, description string) (string, error) {
	reply, err := n.answerer.GenerateAnswer(ctx, models.AnswerRequest{
		Question: n.nameQuestion,
		PriorAnswers: []models.Answer{
			{Question: n.descriptionQuestion, Answer: description},
		},
		Hint: nameHint,
	})
	if err != nil {
		return "", err
	}
	name := cleanName(reply)
	if name == "" {
		return "", ErrEmptyResponse
	}
	return name, nil
}

// cleanName reduces a chatty reply to the bare name.
func cleanName(reply string) string {
	line := ""
	for _, l := range strings.Split(reply, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	lower := strings.ToLower(line)
	for _, prefix := range []string{"project name:", "name:", "suggested name:"} {
		if strings.HasPrefix(lower, prefix) {
			line = strings.TrimSpace(line[len(prefix):])
			break
		}
	}
	line = strings.Trim(line, "\"'*`. ")
	if len([]rune(line)) > 100 {
		line = string([]rune(line)[:100])
	}
	return line
}
