package input

import (
	"regexp"
	"strings"
)

// NameQuestionID is the catalog id of the project-name question, which uses
// the stricter name sanitizer.
const NameQuestionID = 1

var (
	// markdownSpecialRegex matches characters that would change markdown
	// rendering of an answer.
	markdownSpecialRegex = regexp.MustCompile("[*_`#\\[\\]<>\\\\]")

	// nameSpecialRegex is the wider set dropped from project names.
	nameSpecialRegex = regexp.MustCompile("[*_`#\\[\\]<>\\\\|~^]")

	// controlRegex keeps \t, \n and \r.
	controlRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	allControlRegex = regexp.MustCompile(`[\x00-\x1F\x7F]`)

	// whitespaceRegex also covers the unicode space separators browsers
	// treat as whitespace.
	whitespaceRegex = regexp.MustCompile(`[\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]+`)
)

// SanitizeMarkdown escapes markdown-significant characters, strips control
// characters and collapses whitespace.
func SanitizeMarkdown(text string) string {
	out := strings.ReplaceAll(text, "\x00", "")
	out = markdownSpecialRegex.ReplaceAllString(out, `\$0`)
	out = controlRegex.ReplaceAllString(out, "")
	return collapseWhitespace(out)
}

// SanitizeProjectName removes markdown and shell-ish punctuation instead of
// escaping it, so names stay usable as titles and file names.
func SanitizeProjectName(name string) string {
	out := strings.ReplaceAll(name, "\x00", "")
	out = nameSpecialRegex.ReplaceAllString(out, "")
	out = allControlRegex.ReplaceAllString(out, "")
	return collapseWhitespace(out)
}

// Apply runs the sanitizer selected by the rules. Text is returned untouched
// when the question does not ask for sanitization.
func Apply(text string, rules Rules, questionID int) string {
	if !rules.Sanitize {
		return text
	}
	if questionID == NameQuestionID {
		return SanitizeProjectName(text)
	}
	return SanitizeMarkdown(text)
}

func collapseWhitespace(s string) string {
	return strings.Trim(whitespaceRegex.ReplaceAllString(s, " "), " ")
}
