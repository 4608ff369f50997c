// Package history records pipeline invocations in a SQLite database so past
// runs can be listed and re-inspected.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dusk-indust/contentstudio/internal/orchestrator"
)

// ErrNotFound is returned when no run exists under the requested id.
var ErrNotFound = errors.New("history: run not found")

// Entry is one recorded invocation.
type Entry struct {
	RunID       string        `json:"run_id"`
	Topic       string        `json:"topic"`
	BestVariant string        `json:"best_variant"`
	Success     bool          `json:"success"`
	Degraded    bool          `json:"degraded"`
	Duration    time.Duration `json:"duration"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Store persists run history.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		topic TEXT NOT NULL,
		best_variant TEXT,
		success INTEGER NOT NULL,
		degraded INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL,
		result TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Record stores the full result of one invocation.
func (s *Store) Record(topic string, result *orchestrator.OrchestratorResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("history: encode result: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, created_at, topic, best_variant, success, degraded, duration_ms, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, time.Now().UTC(), topic, result.BestCandidate,
		result.Success, result.Degraded, result.TotalTime.Milliseconds(), string(data),
	)
	if err != nil {
		return fmt.Errorf("history: record run: %w", err)
	}
	return nil
}

// Get returns the full stored result for a run id.
func (s *Store) Get(runID string) (*orchestrator.OrchestratorResult, error) {
	row := s.db.QueryRow(`SELECT result FROM runs WHERE run_id = ?`, runID)

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("history: get run: %w", err)
	}

	var result orchestrator.OrchestratorResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("history: decode run: %w", err)
	}
	return &result, nil
}

// List returns run summaries, newest first.
func (s *Store) List(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT run_id, created_at, topic, best_variant, success, degraded, duration_ms
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var best sql.NullString
		var durationMS int64
		if err := rows.Scan(&e.RunID, &e.CreatedAt, &e.Topic, &best, &e.Success, &e.Degraded, &durationMS); err != nil {
			return nil, err
		}
		if best.Valid {
			e.BestVariant = best.String
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Delete removes a run. Deleting a missing run is not an error.
func (s *Store) Delete(runID string) error {
	_, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	return err
}
