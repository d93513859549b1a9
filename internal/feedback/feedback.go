// Package feedback records user feedback and forwards it to a form
// endpoint that emails it on.
package feedback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/modryn-studio/specifythat/internal/models"
)

var (
	// ErrEmpty is returned for a submission without a message.
	ErrEmpty = errors.New("Feedback is required")
	// ErrForward is returned when the form endpoint rejects the feedback.
	ErrForward = errors.New("Failed to send feedback")
)

const (
	unknown = "Unknown"
	subject = "New SpecifyThat Feedback"
)

// Submission is the body of POST /feedback.
type Submission struct {
	Feedback  string `json:"feedback"`
	URL       string `json:"url"`
	UserAgent string `json:"userAgent"`
}

// Store keeps feedback locally.
type Store interface {
	Insert(fb *models.Feedback) error
	MarkForwarded(id int64, at time.Time) error
	MarkFailed(id int64, reason string) error
	Pending(limit int) ([]models.Feedback, error)
}

// Forwarder stores feedback and, when a URL is configured, posts it on as
// a multipart form.
type Forwarder struct {
	store      Store
	url        string
	maxTries   uint
	httpClient *http.Client
	logger     *slog.Logger
}

func NewForwarder(store Store, url string, timeout time.Duration, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		store:      store,
		url:        url,
		maxTries:   3,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Submit stores the feedback and forwards it.
func (f *Forwarder) Submit(ctx context.Context, sub Submission) (*models.Feedback, error) {
	if strings.TrimSpace(sub.Feedback) == "" {
		return nil, ErrEmpty
	}
	fb := &models.Feedback{
		Message:   sub.Feedback,
		PageURL:   orUnknown(sub.URL),
		UserAgent: orUnknown(sub.UserAgent),
	}
	if err := f.store.Insert(fb); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}

	if err := f.forwardAndMark(ctx, fb); err != nil {
		return fb, ErrForward
	}
	return fb, nil
}

// RetryPending forwards stored feedback that was never delivered and
// returns how many went through.
func (f *Forwarder) RetryPending(ctx context.Context) (int, error) {
	if f.url == "" {
		return 0, nil
	}
	pending, err := f.store.Pending(100)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range pending {
		if err := f.forwardAndMark(ctx, &pending[i]); err == nil {
			sent++
		}
	}
	if len(pending) > 0 {
		f.logger.Info("retried pending feedback", "pending", len(pending), "sent", sent)
	}
	return sent, nil
}

func (f *Forwarder) forwardAndMark(ctx context.Context, fb *models.Feedback) error {
	if f.url == "" {
		return nil
	}
	if err := f.forward(ctx, fb); err != nil {
		f.logger.Error("feedback forward failed", "feedback", fb.ID, "error", err)
		if markErr := f.store.MarkFailed(fb.ID, err.Error()); markErr != nil {
			f.logger.Warn("mark feedback failed", "feedback", fb.ID, "error", markErr)
		}
		return err
	}
	now := time.Now()
	fb.ForwardedAt = &now
	if err := f.store.MarkForwarded(fb.ID, now); err != nil {
		f.logger.Warn("mark feedback forwarded", "feedback", fb.ID, "error", err)
	}
	return nil
}

func (f *Forwarder) forward(ctx context.Context, fb *models.Feedback) error {
	body, contentType, err := encodeForm(fb)
	if err != nil {
		return err
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		switch {
		case resp.StatusCode < 300:
			return struct{}{}, nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return struct{}{}, fmt.Errorf("form endpoint returned %d", resp.StatusCode)
		default:
			return struct{}{}, backoff.Permanent(fmt.Errorf("form endpoint returned %d", resp.StatusCode))
		}
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(f.maxTries),
	)
	return err
}

func encodeForm(fb *models.Feedback) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"message", fb.Message},
		{"page_url", fb.PageURL},
		{"user_agent", fb.UserAgent},
		{"_subject", subject},
		{"_template", "table"},
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", kv[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}
