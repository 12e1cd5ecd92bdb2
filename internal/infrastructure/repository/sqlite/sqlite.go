// Package sqlite is the single-file metadata backend for local and CLI deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Open creates the database file and its directory. One connection serializes writers,
// which keeps position reservation race-free without advisory locks.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "./data/judgments.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			pages INTEGER NOT NULL DEFAULT 0,
			extraction_method TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
		`CREATE TABLE IF NOT EXISTS case_records (
			position INTEGER PRIMARY KEY,
			document_id TEXT NOT NULL UNIQUE,
			case_id TEXT NOT NULL,
			court TEXT NOT NULL DEFAULT '',
			decision_date TEXT NOT NULL DEFAULT '',
			judge TEXT NOT NULL DEFAULT '',
			petitioners TEXT NOT NULL DEFAULT '[]',
			respondents TEXT NOT NULL DEFAULT '[]',
			sections TEXT NOT NULL DEFAULT '[]',
			outcome TEXT NOT NULL DEFAULT '',
			full_text TEXT NOT NULL DEFAULT '',
			indexed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_case_records_indexed ON case_records(indexed)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}
