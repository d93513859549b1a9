package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/modryn-studio/specifythat/internal/models"
)

// FeedbackStore keeps user feedback and whether it was forwarded.
type FeedbackStore struct {
	db *DB
}

func NewFeedbackStore(db *DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

// Insert stores fb and sets its id.
func (s *FeedbackStore) Insert(fb *models.Feedback) error {
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`
		INSERT INTO feedback (message, page_url, user_agent, created_at)
		VALUES (?, ?, ?, ?)
	`, fb.Message, fb.PageURL, fb.UserAgent, fb.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("feedback id: %w", err)
	}
	fb.ID = id
	return nil
}

func (s *FeedbackStore) MarkForwarded(id int64, at time.Time) error {
	_, err := s.db.Exec(`UPDATE feedback SET forwarded_at = ?, forward_error = NULL WHERE id = ?`, at.Unix(), id)
	if err != nil {
		return fmt.Errorf("mark feedback forwarded: %w", err)
	}
	return nil
}

func (s *FeedbackStore) MarkFailed(id int64, reason string) error {
	_, err := s.db.Exec(`UPDATE feedback SET forward_error = ? WHERE id = ?`, reason, id)
	if err != nil {
		return fmt.Errorf("mark feedback failed: %w", err)
	}
	return nil
}

// Pending lists feedback that has not been forwarded yet, oldest first.
func (s *FeedbackStore) Pending(limit int) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT id, message, page_url, user_agent, created_at, forwarded_at
		FROM feedback WHERE forwarded_at IS NULL ORDER BY id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending feedback: %w", err)
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var fb models.Feedback
		var createdAt int64
		var forwardedAt sql.NullInt64
		if err := rows.Scan(&fb.ID, &fb.Message, &fb.PageURL, &fb.UserAgent, &createdAt, &forwardedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		fb.CreatedAt = time.Unix(createdAt, 0)
		if forwardedAt.Valid {
			t := time.Unix(forwardedAt.Int64, 0)
			fb.ForwardedAt = &t
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}
