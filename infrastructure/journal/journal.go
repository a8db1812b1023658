// Package journal keeps the run history in a local SQLite database.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"club-incentives/domain/history"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements history.Recorder and history.Reader
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the journal at path and applies pending migrations
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run, assigning an ID and timestamps when they are unset
func (s *Store) Record(ctx context.Context, run *history.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = s.now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, submission_row, spreadsheet_url, clubs, certificates, emails_sent, outcome, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SubmissionRow, run.SpreadsheetURL, run.Clubs, run.Certificates, run.EmailsSent,
		string(run.Outcome), run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, d := range run.Defects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_defects (run_id, position, message) VALUES (?, ?, ?)`,
			run.ID, i, d); err != nil {
			return fmt.Errorf("failed to insert defect: %w", err)
		}
	}

	return tx.Commit()
}

const selectRuns = `
	SELECT id, submission_row, spreadsheet_url, clubs, certificates, emails_sent, outcome, started_at, finished_at
	FROM runs`

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]history.Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []history.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		if runs[i].Defects, err = s.defects(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns one run by ID
func (s *Store) Get(ctx context.Context, id string) (*history.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", history.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if run.Defects, err = s.defects(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) defects(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT message FROM run_defects WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query defects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*history.Run, error) {
	var (
		run     history.Run
		outcome string
	)
	err := row.Scan(&run.ID, &run.SubmissionRow, &run.SpreadsheetURL, &run.Clubs, &run.Certificates,
		&run.EmailsSent, &outcome, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	run.Outcome = history.Outcome(outcome)
	return &run, nil
}

// Ensure Store implements the history ports
var (
	_ history.Recorder = (*Store)(nil)
	_ history.Reader   = (*Store)(nil)
)
