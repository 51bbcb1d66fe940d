package trainrun

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bricsview/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current ledger schema version. Bump this when the
// schema changes; users then delete the ledger database.
const schemaVersion = 1

// ErrSchemaMismatch indicates the ledger schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run statuses recorded in the ledger.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusSkipped   = "skipped"
	RunStatusDryRun    = "dry_run"
)

// Run is one recorded training attempt.
type Run struct {
	ID         string
	Date       string
	Sequence   string
	DataDir    string
	ResultDir  string
	Command    string
	Status     string
	ExitCode   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Ledger persists training runs in SQLite.
type Ledger struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (l *Ledger) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := l.db.ExecContext(ctx, query, args...)
		return err
	})
}

// OpenLedger initializes or connects to the training-run database.
func OpenLedger(cfg *config.Config) (*Ledger, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	ledger := &Ledger{db: db, path: dbPath}
	if err := ledger.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ledger, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Path returns the ledger database path.
func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) initSchema(ctx context.Context) error {
	var version int
	err := l.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows), isMissingTable(err):
		if _, execErr := l.db.ExecContext(ctx, schemaSQL); execErr != nil {
			return fmt.Errorf("create schema: %w", execErr)
		}
		if _, execErr := l.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); execErr != nil {
			return fmt.Errorf("record schema version: %w", execErr)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, l.path)
	}
	return nil
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// Begin records the start of a run and returns its id.
func (l *Ledger) Begin(ctx context.Context, target Target, command, status string) (string, error) {
	id := uuid.NewString()
	err := l.execWithRetry(ctx,
		`INSERT INTO train_runs (id, capture_date, sequence, data_dir, result_dir, command, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, target.Date, target.Sequence, target.DataDir, target.ResultDir, command, status, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("record run start: %w", err)
	}
	return id, nil
}

// Finish records the terminal status of a run.
func (l *Ledger) Finish(ctx context.Context, id, status string, exitCode int, runErr string) error {
	err := l.execWithRetry(ctx,
		`UPDATE train_runs SET status = ?, exit_code = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, exitCode, runErr, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// List returns recorded runs, newest first, capped at limit (0 means all).
func (l *Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, capture_date, sequence, data_dir, result_dir, command, status,
		COALESCE(exit_code, 0), error, started_at, COALESCE(finished_at, started_at)
		FROM train_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Date, &run.Sequence, &run.DataDir, &run.ResultDir,
			&run.Command, &run.Status, &run.ExitCode, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
