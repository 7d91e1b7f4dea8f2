package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewStateDB opens (creating if needed) the local SQLite file that holds the
// state snapshot and makes sure its table exists.
func NewStateDB(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}
	db, err := sqlx.Connect("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: connect: %w", err)
	}
	// a single writer keeps SQLite out of "database is locked"
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(stateSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return db, nil
}

const stateSchema = `
CREATE TABLE IF NOT EXISTS app_state (
    name       TEXT PRIMARY KEY,
    version    INTEGER NOT NULL,
    payload    TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`
