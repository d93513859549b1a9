package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/modryn-studio/specifythat/internal/interview"
	"github.com/modryn-studio/specifythat/internal/questions"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.viewMode == ViewModeHelp {
		return m.helpView()
	}

	var body string
	switch m.state.Phase {
	case interview.PhaseAnalyzing:
		body = m.renderAnalyzing()
	case interview.PhaseUnitSelection:
		body = m.renderUnits()
	case interview.PhaseIdeation:
		body = m.renderIdeation()
	case interview.PhaseCompleted:
		body = m.renderCompleted()
	default:
		body = m.renderQuestion()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderMessages(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("SPECIFYTHAT")
	subtitle := SubtitleStyle.Render("Turn an idea into a buildable spec")

	var project string
	if m.state.GeneratingName {
		project = DimStyle.Render(" · naming your project" + m.spinner.View())
	} else if len(m.state.Session.Answers) > 0 {
		project = DimStyle.Render(" · " + m.state.Session.Answers[0].Answer)
	}

	total := m.opts.Manager.Machine().Catalog().Len()
	pct := float64(m.opts.Manager.Machine().Progress(m.state)) / 100
	bar := m.progress.ViewAs(pct)
	count := DimStyle.Render(fmt.Sprintf(" %d/%d", min(m.state.Session.CurrentQuestionIndex, total), total))

	return lipgloss.NewStyle().
		PaddingLeft(1).
		Width(m.width).
		Render(title+"  "+subtitle+project) + "\n " + bar + count + "\n"
}

func (m Model) renderQuestion() string {
	q, ok := m.opts.Manager.Machine().Current(m.state)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(QuestionStyle.Render(fmt.Sprintf("%d. %s", m.state.Session.CurrentQuestionIndex+1, q.Text)))
	b.WriteString("\n")
	if q.HelpText != "" {
		b.WriteString(HelpTextStyle.Render(q.HelpText))
		b.WriteString("\n")
	}
	if q.AllowFileUpload {
		b.WriteString(DimStyle.Render(fmt.Sprintf("Attach a file with /attach <path> (%s, up to %s)",
			strings.Join(q.FileTypes, ", "), humanize.IBytes(uint64(q.MaxFileSize)))))
		b.WriteString("\n")
	}
	if m.state.Session.CurrentQuestionIndex == questions.DescriptionIndex {
		b.WriteString(DimStyle.Render("Not sure how to describe it? Type /ideate."))
		b.WriteString("\n")
	}
	if m.attachment != nil {
		b.WriteString(SuccessStyle.Render("📎 " + m.attachment.name))
		b.WriteString("\n")
	}

	switch {
	case m.state.SuggestionPending:
		b.WriteString(StageStyle.Render(m.spinner.View() + " Thinking of a suggestion..."))
		b.WriteString("\n")
	case m.state.Suggestion != "":
		s := SuggestionTitleStyle.Render("Suggested answer") + "\n" + m.state.Suggestion + "\n\n" +
			DimStyle.Render("ctrl+y accept · ctrl+n discard")
		b.WriteString(SuggestionStyle.Width(max(20, m.width-4)).Render(s))
		b.WriteString("\n")
	}

	b.WriteString(m.renderInput())
	return b.String()
}

func (m Model) renderInput() string {
	style := InputStyle
	if m.input.Focused() {
		style = InputFocusedStyle
	}
	return style.Render(m.input.View())
}

func (m Model) renderAnalyzing() string {
	stage := analysisStages[m.stage%len(analysisStages)]
	return "\n" + StageStyle.Render(m.spinner.View()+" "+stage+"...") + "\n\n" +
		DimStyle.Render("Press esc to go back and edit your description.") + "\n"
}

func (m Model) renderUnits() string {
	var b strings.Builder
	b.WriteString(QuestionStyle.Render("This looks like several projects. Which one should we spec first?"))
	b.WriteString("\n\n")
	if m.state.Analysis != nil {
		for i, u := range m.state.Analysis.Units {
			line := fmt.Sprintf("%s\n%s", u.Name, u.Description)
			if i == m.unitCursor {
				b.WriteString(UnitSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(UnitStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString(DimStyle.Render("The other parts can be specified in later sessions."))
	return b.String()
}

func (m Model) renderIdeation() string {
	var b strings.Builder
	b.WriteString(SuggestionTitleStyle.Render("Let's shape your idea"))
	b.WriteString("\n\n")

	if m.draft != nil {
		b.WriteString(QuestionStyle.Render("Here's a description based on your answers. Edit it, then press enter."))
		b.WriteString("\n")
		if !m.draft.Generated {
			b.WriteString(WarningStyle.Render("Written from a template; the assistant was unavailable."))
			b.WriteString("\n")
		}
		b.WriteString(m.renderInput())
		return b.String()
	}

	if m.flow != nil {
		if p, ok := m.flow.Current(); ok {
			b.WriteString(DimStyle.Render(fmt.Sprintf("Step %d of %d", m.flow.Step(), m.flow.Total())))
			b.WriteString("\n")
			b.WriteString(QuestionStyle.Render(p.Question))
			b.WriteString("\n")
			b.WriteString(HelpTextStyle.Render(p.Placeholder))
			b.WriteString("\n")
		} else if m.busy {
			b.WriteString(StageStyle.Render(m.spinner.View() + " Writing your description..."))
			b.WriteString("\n")
		}
	}
	b.WriteString(m.renderInput())
	return b.String()
}

func (m Model) renderCompleted() string {
	if m.specView && m.spec != nil {
		return m.viewport.View()
	}

	var b strings.Builder
	b.WriteString(SuccessStyle.Render("✓ Interview complete"))
	b.WriteString("\n\n")
	for _, a := range m.state.Session.Answers {
		marker := ""
		if a.IsAIGenerated {
			marker = DimStyle.Render(" (suggested)")
		}
		b.WriteString(QuestionStyle.Render(a.Question) + marker + "\n")
		b.WriteString(truncate(a.Answer, max(20, m.width-4)) + "\n")
	}
	b.WriteString("\n")
	if m.busy {
		b.WriteString(StageStyle.Render(m.spinner.View() + " Generating your spec..."))
	} else if m.spec != nil {
		b.WriteString(DimStyle.Render("ctrl+g regenerate · ctrl+s save · /back edit answers"))
	} else {
		b.WriteString(DimStyle.Render("ctrl+g generate spec · /back edit answers"))
	}
	return b.String()
}

func (m Model) renderMessages() string {
	var lines []string
	if m.state.Error != "" {
		lines = append(lines, ErrorStyle.Render("✗ "+m.state.Error+" (esc to dismiss)"))
	}
	if m.inputError != "" {
		lines = append(lines, ErrorStyle.Render(m.inputError))
	}
	if m.notice != "" {
		lines = append(lines, SuccessStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	return StatusBarStyle.Width(m.width).Render(m.help.View(m.keys))
}

func (m Model) helpView() string {
	title := HelpTitleStyle.Render("Keyboard Shortcuts")

	commands := DimStyle.Render(strings.Join([]string{
		"/skip            let the assistant suggest an answer",
		"/back            previous question",
		"/reset           start over",
		"/attach <file>   attach a file to your description",
		"/ideate          not sure yet? answer three short prompts instead",
	}, "\n"))

	content := title + "\n\n" + m.help.FullHelpView(m.keys.FullHelp()) + "\n\n" + commands +
		"\n\n" + DimStyle.Render("Press f1 or esc to close")

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		HelpStyle.Render(content),
	)
}

func humanBytes(n int) string {
	return humanize.Bytes(uint64(n))
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
