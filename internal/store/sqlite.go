package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feeder-populator/internal/populate"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// Store persists population runs in SQLite.
type Store struct {
	db *sql.DB
}

// RunSummary is the listing row for a stored run.
type RunSummary struct {
	RunID     string           `json:"run_id"`
	Seed      uint64           `json:"seed"`
	CreatedAt time.Time        `json:"created_at"`
	Summary   populate.Summary `json:"summary"`
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode so API readers do not block the writer.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	// Summary columns are kept for listing; the full result is a JSON blob.
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		dwellings INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		summary JSON NOT NULL,
		result JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	return nil
}

// SaveRun stores a result under its run ID.
func (s *Store) SaveRun(ctx context.Context, res *populate.Result) error {
	if res == nil || res.RunID == "" {
		return errors.New("result has no run id")
	}
	summary, err := json.Marshal(res.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, seed, created_at, dwellings, warnings, summary, result) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, int64(res.Seed), res.CreatedAt.UTC(), res.Summary.Dwellings, res.Summary.Warnings, string(summary), string(body))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", res.RunID, err)
	}
	return nil
}

// GetRun loads a stored result.
func (s *Store) GetRun(ctx context.Context, runID string) (*populate.Result, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT result FROM runs WHERE run_id = ?`, runID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	var res populate.Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &res, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seed, created_at, summary FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			seed    int64
			summary string
		)
		if err := rows.Scan(&r.RunID, &seed, &r.CreatedAt, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Seed = uint64(seed)
		if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary of %s: %w", r.RunID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
