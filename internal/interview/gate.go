package interview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modryn-studio/specifythat/internal/input"
)

// RejectReason classifies why input was refused.
type RejectReason string

const (
	RejectEmpty      RejectReason = "empty"
	RejectValidation RejectReason = "validation"
	RejectGibberish  RejectReason = "gibberish"
	RejectNoQuestion RejectReason = "no_question"
)

// InputRejectedError is shown inline next to the answer box. The session is
// left as it was and the user may try again.
type InputRejectedError struct {
	Reason  RejectReason
	Message string
}

func (e *InputRejectedError) Error() string {
	return e.Message
}

// Gate runs raw input for the question at index through validation, the
// gibberish check and sanitization, and returns the text to record.
func (m *Machine) Gate(index int, text string) (string, error) {
	q, ok := m.catalog.At(index)
	if !ok {
		return "", &InputRejectedError{Reason: RejectNoQuestion, Message: "There is no question to answer."}
	}
	if strings.TrimSpace(text) == "" {
		return "", &InputRejectedError{Reason: RejectEmpty, Message: "Please enter an answer."}
	}

	rules := q.Rules()
	if err := input.Validate(text, rules); err != nil {
		var verr *input.ValidationError
		if errors.As(err, &verr) {
			return "", &InputRejectedError{Reason: RejectValidation, Message: verr.Message}
		}
		return "", err
	}
	if rules.RejectGibberish {
		if err := input.ValidateMeaningful(text); err != nil {
			return "", &InputRejectedError{Reason: RejectGibberish, Message: err.Error()}
		}
	}

	cleaned := strings.TrimSpace(input.Apply(text, rules, q.ID))
	if cleaned == "" {
		return "", &InputRejectedError{Reason: RejectEmpty, Message: "Please enter an answer."}
	}
	return cleaned, nil
}

// GateAttachment checks an uploaded file's content for the question at
// index. Questions that do not take uploads reject any attachment.
func (m *Machine) GateAttachment(index int, content string) error {
	if content == "" {
		return nil
	}
	q, ok := m.catalog.At(index)
	if !ok || !q.AllowFileUpload {
		return &InputRejectedError{Reason: RejectValidation, Message: "This question does not accept file uploads."}
	}
	if q.MaxFileSize > 0 && int64(len(content)) > q.MaxFileSize {
		return &InputRejectedError{
			Reason:  RejectValidation,
			Message: fmt.Sprintf("File must be %d KB or smaller", q.MaxFileSize/1024),
		}
	}
	if strings.ContainsRune(content, '\x00') {
		return &InputRejectedError{Reason: RejectValidation, Message: "File must be plain text."}
	}
	return nil
}
