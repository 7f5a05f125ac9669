// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/DaBaiHeDaBaiCai/sound-survey-project/cliparse"
)

// Open connects to the configured database and prepares the connection
// pool. For sqlite the parent directory is created on demand and the
// single-writer WAL setup is applied.
func Open(cfg cliparse.Config) (*sql.DB, error) {
	switch cfg.DatabaseType {
	case "postgres":
		conn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return conn, nil
	case "sqlite":
		if dir := filepath.Dir(cfg.DatabaseURL); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		conn, err := sql.Open("sqlite", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// WAL single-writer setup: one connection avoids SQLITE_BUSY
		// under the write volume this service sees
		conn.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys=ON",
			"PRAGMA busy_timeout=5000",
		} {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}

// CreateSchema creates the response table.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, databaseType string) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if databaseType == "postgres" {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	_, err := db.Exec(fmt.Sprintf(schema, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Responses: one row per accepted trial submission
CREATE TABLE IF NOT EXISTS response (
    %s,
    participant_id VARCHAR(50),
    version VARCHAR(10),
    stimulus_label VARCHAR(50),
    person VARCHAR(20),
    trial_index INTEGER,
    start_time VARCHAR(30),
    end_time VARCHAR(30),
    q1 INTEGER,
    q2 INTEGER,
    q3 INTEGER,
    q4 INTEGER,
    q5 INTEGER,
    run_id VARCHAR(36),
    is_complete BOOLEAN DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_response_run_id ON response(run_id);
CREATE INDEX IF NOT EXISTS idx_response_is_complete ON response(is_complete);
`

// Migrate backfills columns that predate the run tracking fields.
// Databases created before run_id/is_complete existed keep their rows.
func Migrate(db *sql.DB, databaseType string) error {
	cols, err := tableColumns(db, databaseType)
	if err != nil {
		return err
	}

	if !cols["run_id"] {
		if _, err := db.Exec("ALTER TABLE response ADD COLUMN run_id VARCHAR(36)"); err != nil {
			return fmt.Errorf("failed to add run_id column: %w", err)
		}
	}
	if !cols["is_complete"] {
		if _, err := db.Exec("ALTER TABLE response ADD COLUMN is_complete BOOLEAN DEFAULT FALSE"); err != nil {
			return fmt.Errorf("failed to add is_complete column: %w", err)
		}
	}

	return nil
}

func tableColumns(db *sql.DB, databaseType string) (map[string]bool, error) {
	query := "SELECT name FROM pragma_table_info('response')"
	if databaseType == "postgres" {
		query = "SELECT column_name FROM information_schema.columns WHERE table_name = 'response'"
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect response table: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Vacuum reclaims file space after bulk deletes. Callers treat failures
// as non-fatal; a bloated file is an inconvenience, not an error.
func Vacuum(db *sql.DB) error {
	_, err := db.Exec("VACUUM")
	return err
}
