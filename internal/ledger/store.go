// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records the outcome of every document conversion in a
// local SQLite database so past runs can be listed and exported.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf2comic/internal/convert"
	"github.com/pdiddy/pdf2comic/pkg/types"
)

const (
	dbFile            = "history.db"
	defaultMaxResults = 50
)

// Entry is one recorded document outcome.
type Entry struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Source     string    `json:"source" yaml:"source"`
	Kind       string    `json:"kind" yaml:"kind"`
	OutputPath string    `json:"output_path" yaml:"output_path"`
	Status     string    `json:"status" yaml:"status"`
	Pages      int       `json:"pages" yaml:"pages"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// Store manages the history database.
type Store struct {
	db         *sql.DB
	stateDir   string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates <stateDir>/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = types.DefaultStateDir
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, stateDir: stateDir, maxResults: maxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			source TEXT NOT NULL,
			kind TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			pages INTEGER,
			error TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_run ON conversions(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRunID returns a fresh identifier grouping the outcomes of one run.
func NewRunID() string {
	return uuid.NewString()
}

// Record stores every outcome of a batch under runID in one transaction.
func (s *Store) Record(ctx context.Context, runID string, outcomes []convert.Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO conversions (run_id, source, kind, output_path, status, pages, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ts := s.now().UTC().Format(time.RFC3339Nano)
	for _, o := range outcomes {
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		_, err := stmt.ExecContext(ctx,
			runID, o.Document.Path, o.Document.Kind.String(), o.OutputPath,
			string(o.Status), o.Pages, errText, ts,
		)
		if err != nil {
			return fmt.Errorf("recording %s: %w", o.Document.Path, err)
		}
	}
	return tx.Commit()
}

// List returns the most recent entries, newest first. A limit of zero
// uses the store default.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, kind, output_path, status, pages, error, recorded_at
		 FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			out     sql.NullString
			errText sql.NullString
			pages   sql.NullInt64
			ts      string
		)
		if err := rows.Scan(&e.RunID, &e.Source, &e.Kind, &out, &e.Status, &pages, &errText, &ts); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.OutputPath = out.String
		e.Error = errText.String
		e.Pages = int(pages.Int64)
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.RecordedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
