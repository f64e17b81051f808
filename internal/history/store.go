// Package history persists a record of completed optimization runs so the
// CLI and API can report what the pipeline did after the fact. Documents and
// artifacts are not stored, only run outcomes.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tailor/internal/config"
)

// Run is one recorded pipeline outcome.
type Run struct {
	ID             int64
	RequestID      string
	CreatedAt      time.Time
	Success        bool
	Compiled       bool
	PageCount      int
	FixAttempts    int
	ShrinkAttempts int
	Duration       time.Duration
	DocumentBytes  int
	Summary        string
}

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const runColumns = `id, request_id, created_at, success, compiled, page_count,
    fix_attempts, shrink_attempts, duration_ms, document_bytes, summary`

// Record inserts one run outcome and returns it with its assigned ID.
func (s *Store) Record(ctx context.Context, run Run) (*Run, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            request_id, created_at, success, compiled, page_count,
            fix_attempts, shrink_attempts, duration_ms, document_bytes, summary
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RequestID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(run.Success),
		boolToInt(run.Compiled),
		run.PageCount,
		run.FixAttempts,
		run.ShrinkAttempts,
		run.Duration.Milliseconds(),
		run.DocumentBytes,
		run.Summary,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a run by identifier. Returns nil when no row matches.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		createdAt  string
		success    int
		compiled   int
		durationMS int64
	)
	if err := row.Scan(
		&run.ID,
		&run.RequestID,
		&createdAt,
		&success,
		&compiled,
		&run.PageCount,
		&run.FixAttempts,
		&run.ShrinkAttempts,
		&durationMS,
		&run.DocumentBytes,
		&run.Summary,
	); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = parsed
	run.Success = success != 0
	run.Compiled = compiled != 0
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
