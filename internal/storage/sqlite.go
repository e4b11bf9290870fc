// Package storage provides SQLite-based run history for the demos.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrUnknownRun is returned when a run ID has no row.
var ErrUnknownRun = errors.New("storage: unknown run")

// Fixed width so timestamps sort lexically.
const timeLayout = "2006-01-02 15:04:05.000000000"

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one demo session.
type Run struct {
	ID          string
	DemoID      string
	User        string // SSH user, empty for local runs
	StartedAt   time.Time
	EndedAt     time.Time // zero while the run is active
	Ticks       int64
	FinalMode   string
	Transitions int
}

// Finished reports whether EndRun was recorded.
func (r Run) Finished() bool {
	return !r.EndedAt.IsZero()
}

// Duration returns how long the run lasted, or zero while it is active.
func (r Run) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Transition is one committed mode change within a run.
type Transition struct {
	RunID     string
	Tick      int64
	From      string
	To        string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			demo_id TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			ended_at TEXT,
			ticks INTEGER NOT NULL DEFAULT 0,
			final_mode TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_runs_demo_id ON runs(demo_id, started_at DESC);

		CREATE TABLE IF NOT EXISTS transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			from_mode TEXT NOT NULL,
			to_mode TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_transitions_run_id ON transitions(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun records the start of a run and returns its generated ID.
func (s *Store) BeginRun(demoID, user string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, demo_id, user_name, started_at) VALUES (?, ?, ?, ?)",
		id, demoID, user, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot begin run: %w", err)
	}
	return id, nil
}

// RecordTransition appends a committed mode change to a run.
func (s *Store) RecordTransition(runID string, tick int64, from, to string) error {
	_, err := s.db.Exec(
		`INSERT INTO transitions (run_id, tick, from_mode, to_mode, created_at)
		 SELECT id, ?, ?, ?, ? FROM runs WHERE id = ?`,
		tick, from, to, time.Now().UTC().Format(timeLayout), runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record transition: %w", err)
	}
	return nil
}

// EndRun records the end of a run.
func (s *Store) EndRun(runID string, ticks int64, finalMode string) error {
	res, err := s.db.Exec(
		"UPDATE runs SET ended_at = ?, ticks = ?, final_mode = ? WHERE id = ?",
		time.Now().UTC().Format(timeLayout), ticks, finalMode, runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot end run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot end run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w %s", ErrUnknownRun, runID)
	}
	return nil
}

// Run retrieves a single run by ID.
func (s *Store) Run(runID string) (*Run, error) {
	row := s.db.QueryRow(runSelect+" WHERE r.id = ? GROUP BY r.id", runID)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w %s", ErrUnknownRun, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return r, nil
}

// RecentRuns retrieves the most recent runs, newest first. An empty demoID
// matches every demo.
func (s *Store) RecentRuns(demoID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		runSelect+`
		 WHERE ? = '' OR r.demo_id = ?
		 GROUP BY r.id
		 ORDER BY r.started_at DESC, r.rowid DESC
		 LIMIT ?`,
		demoID, demoID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Transitions retrieves the mode changes of a run in commit order.
func (s *Store) Transitions(runID string) ([]Transition, error) {
	rows, err := s.db.Query(
		`SELECT run_id, tick, from_mode, to_mode, created_at
		 FROM transitions
		 WHERE run_id = ?
		 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var t Transition
		var createdAt any
		if err := rows.Scan(&t.RunID, &t.Tick, &t.From, &t.To, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		t.CreatedAt = parseTime(createdAt)
		out = append(out, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// ClearRuns deletes the runs of a demo and their transitions.
func (s *Store) ClearRuns(demoID string) error {
	_, err := s.db.Exec(
		"DELETE FROM transitions WHERE run_id IN (SELECT id FROM runs WHERE demo_id = ?)",
		demoID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs WHERE demo_id = ?", demoID); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

const runSelect = `SELECT r.id, r.demo_id, r.user_name, r.started_at, r.ended_at, r.ticks, r.final_mode,
		        COUNT(t.id)
		 FROM runs r
		 LEFT JOIN transitions t ON t.run_id = r.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var startedAt, endedAt any
	if err := row.Scan(&r.ID, &r.DemoID, &r.User, &startedAt, &endedAt, &r.Ticks, &r.FinalMode, &r.Transitions); err != nil {
		return nil, err
	}
	r.StartedAt = parseTime(startedAt)
	r.EndedAt = parseTime(endedAt)
	return &r, nil
}

// parseTime handles both time.Time and the text layouts the driver returns.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
