package input

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rules is the declarative validation config attached to a question.
// Zero values disable the corresponding check.
type Rules struct {
	MinLength       int
	MaxLength       int
	Pattern         *regexp.Regexp
	PatternMessage  string
	Sanitize        bool
	RejectGibberish bool
}

// ValidationError carries the user-facing message of the first rule an
// answer violated.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the trimmed answer against min length, max length and
// pattern, in that order, and reports the first violation.
func Validate(text string, rules Rules) error {
	trimmed := strings.TrimSpace(text)
	length := utf8.RuneCountInString(trimmed)

	if rules.MinLength > 0 && length < rules.MinLength {
		return &ValidationError{
			Rule:    "minLength",
			Message: fmt.Sprintf("Must be at least %d characters", rules.MinLength),
		}
	}
	if rules.MaxLength > 0 && length > rules.MaxLength {
		return &ValidationError{
			Rule:    "maxLength",
			Message: fmt.Sprintf("Must be %d characters or less", rules.MaxLength),
		}
	}
	if rules.Pattern != nil && !rules.Pattern.MatchString(trimmed) {
		msg := rules.PatternMessage
		if msg == "" {
			msg = "Invalid format"
		}
		return &ValidationError{Rule: "pattern", Message: msg}
	}
	return nil
}
