package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sql.DB
}

// Open creates or opens the SQLite database at the given path, runs schema
// initialization and migrations, and enables WAL mode.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // one writer at a time

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS specs (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  project_name TEXT NOT NULL,
  markdown TEXT NOT NULL,
  answers TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_specs_created_at ON specs(created_at);
CREATE INDEX IF NOT EXISTS idx_specs_session_id ON specs(session_id);

CREATE TABLE IF NOT EXISTS feedback (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  message TEXT NOT NULL,
  page_url TEXT NOT NULL,
  user_agent TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  forwarded_at INTEGER
);
`
	_, err := db.Exec(schema)
	return err
}

// runMigrations applies schema changes made after the initial schema. Each
// one checks before it alters, so it is safe on every open.
func runMigrations(db *sql.DB) error {
	// v1: remember why forwarding feedback failed.
	hasForwardError, err := columnExists(db, "feedback", "forward_error")
	if err != nil {
		return fmt.Errorf("check forward_error column: %w", err)
	}
	if !hasForwardError {
		migrations := []string{
			`ALTER TABLE feedback ADD COLUMN forward_error TEXT`,
			`CREATE INDEX IF NOT EXISTS idx_feedback_forwarded_at ON feedback(forwarded_at)`,
		}
		for _, m := range migrations {
			if _, err := db.Exec(m); err != nil {
				return fmt.Errorf("run migration v1: %w", err)
			}
		}
	}

	// v2: the unit a spec was written for, on multi-unit projects.
	hasUnit, err := columnExists(db, "specs", "unit_name")
	if err != nil {
		return fmt.Errorf("check unit_name column: %w", err)
	}
	if !hasUnit {
		if _, err := db.Exec(`ALTER TABLE specs ADD COLUMN unit_name TEXT`); err != nil {
			return fmt.Errorf("run migration v2: %w", err)
		}
	}

	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(
		fmt.Sprintf("SELECT name FROM pragma_table_info('%s') WHERE name = ?", table),
		column,
	)
	if err != nil {
		return false, err
	}
	found := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return found, nil
}
