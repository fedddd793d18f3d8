// Package history records reconciliation runs: one row per operation per
// generate run, carrying the decision log that explains what the merge did.
// The log in the snapshot files is transient; this is the durable audit
// trail.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded reconciliation of one operation.
type Run struct {
	RunID           string    `json:"runId"`
	OperationID     string    `json:"operationId"`
	DocumentVersion string    `json:"documentVersion"`
	Decisions       []string  `json:"decisions"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Store is the interface for reading and writing reconciliation runs.
type Store interface {
	// Record persists one run. A zero RunID or CreatedAt is filled in.
	Record(ctx context.Context, run *Run) error

	// ByOperation returns runs for one operation, newest first.
	ByOperation(ctx context.Context, operationID string, limit int) ([]Run, error)

	// Recent returns the most recent runs across all operations.
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the history database at path and ensures the
// schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db %s: %w", path, err)
	}
	s := &SQLiteStore{db: db}
	if err := s.CreateTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// CreateTable creates the merge_runs table if it does not exist.
func (s *SQLiteStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS merge_runs (
			run_id           TEXT PRIMARY KEY,
			operation_id     TEXT NOT NULL,
			document_version TEXT NOT NULL,
			decisions        TEXT NOT NULL DEFAULT '[]',
			created_at       TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_merge_runs_op_time
			ON merge_runs (operation_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating merge_runs table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	fill(run)
	decisions, err := json.Marshal(run.Decisions)
	if err != nil {
		return fmt.Errorf("encoding decisions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO merge_runs (run_id, operation_id, document_version, decisions, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.OperationID, run.DocumentVersion, string(decisions), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording merge run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ByOperation(ctx context.Context, operationID string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, operation_id, document_version, decisions, created_at
		FROM merge_runs
		WHERE operation_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, operationID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying merge runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, operation_id, document_version, decisions, created_at
		FROM merge_runs
		ORDER BY created_at DESC
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying merge runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var decisions string
		if err := rows.Scan(&r.RunID, &r.OperationID, &r.DocumentVersion, &decisions, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning merge run: %w", err)
		}
		if decisions != "" {
			_ = json.Unmarshal([]byte(decisions), &r.Decisions)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func fill(run *Run) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
