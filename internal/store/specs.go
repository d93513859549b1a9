package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/modryn-studio/specifythat/internal/models"
)

// SpecStore archives generated specs.
type SpecStore struct {
	db *DB
}

func NewSpecStore(db *DB) *SpecStore {
	return &SpecStore{db: db}
}

// Save inserts spec, filling in the id and creation time when unset.
func (s *SpecStore) Save(spec *models.Spec) error {
	if spec.ID == "" {
		spec.ID = uuid.New().String()
	}
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = time.Now()
	}
	answers, err := json.Marshal(spec.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO specs (id, session_id, project_name, unit_name, markdown, answers, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, spec.ID, spec.SessionID, spec.ProjectName, nullString(spec.UnitName), spec.Markdown, string(answers), spec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert spec: %w", err)
	}
	return nil
}

// Get fetches a spec by id. A missing spec is (nil, nil).
func (s *SpecStore) Get(id string) (*models.Spec, error) {
	row := s.db.QueryRow(`
		SELECT id, session_id, project_name, unit_name, markdown, answers, created_at
		FROM specs WHERE id = ?
	`, id)
	spec, err := scanSpec(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get spec: %w", err)
	}
	return spec, nil
}

// List returns the newest specs first.
func (s *SpecStore) List(limit int) ([]models.Spec, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, session_id, project_name, unit_name, markdown, answers, created_at
		FROM specs ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	defer rows.Close()

	var specs []models.Spec
	for rows.Next() {
		spec, err := scanSpec(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spec: %w", err)
		}
		specs = append(specs, *spec)
	}
	return specs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpec(row scanner) (*models.Spec, error) {
	var spec models.Spec
	var unit sql.NullString
	var answers string
	var createdAt int64

	if err := row.Scan(&spec.ID, &spec.SessionID, &spec.ProjectName, &unit, &spec.Markdown, &answers, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answers), &spec.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	spec.UnitName = unit.String
	spec.CreatedAt = time.Unix(createdAt, 0)
	return &spec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
