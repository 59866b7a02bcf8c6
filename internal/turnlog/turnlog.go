// Package turnlog persists per-attempt gate outcomes and cumulative session
// metrics in SQLite, for the inspect tool and post-session analysis.
package turnlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS turn_attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id     TEXT NOT NULL,
	attempt     INTEGER NOT NULL,
	clean_len   INTEGER NOT NULL,
	emotion     INTEGER NOT NULL,
	flow        INTEGER NOT NULL,
	clarity     INTEGER NOT NULL,
	dialogue    INTEGER NOT NULL,
	variety     INTEGER NOT NULL,
	aggregate   REAL NOT NULL,
	label       TEXT NOT NULL,
	action      TEXT NOT NULL,
	forced      INTEGER NOT NULL DEFAULT 0,
	reason      TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turn_attempts_turn
ON turn_attempts(turn_id, attempt);

CREATE TABLE IF NOT EXISTS session_metrics (
	id                 INTEGER PRIMARY KEY CHECK (id = 1),
	total_outputs      INTEGER NOT NULL,
	total_regens       INTEGER NOT NULL,
	fatigue_detections INTEGER NOT NULL,
	drift_detections   INTEGER NOT NULL,
	empty_results      INTEGER NOT NULL,
	updated_at         TEXT NOT NULL
);
`

// #endregion schema

// #region row

// Row is one recorded generation attempt.
type Row struct {
	TurnID    string
	Attempt   int
	CleanLen  int
	Emotion   int
	Flow      int
	Clarity   int
	Dialogue  int
	Variety   int
	Aggregate float64
	Label     string
	Action    string // "accept" | "retry" | "accept_exhausted"
	Forced    bool
	Reason    string
	CreatedAt time.Time
}

// Metrics mirrors the single-row cumulative counters table.
type Metrics struct {
	TotalOutputs      int
	TotalRegens       int
	FatigueDetections int
	DriftDetections   int
	EmptyResults      int
	UpdatedAt         time.Time
}

// #endregion row

// #region store

// Store wraps the SQLite turn log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the turn log database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open turn log: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate turn log: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region record

// Record inserts one attempt row.
func (s *Store) Record(row Row) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	forced := 0
	if row.Forced {
		forced = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO turn_attempts
		(turn_id, attempt, clean_len, emotion, flow, clarity, dialogue, variety,
		 aggregate, label, action, forced, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.TurnID, row.Attempt, row.CleanLen,
		row.Emotion, row.Flow, row.Clarity, row.Dialogue, row.Variety,
		row.Aggregate, row.Label, row.Action, forced,
		nullIfEmpty(row.Reason), row.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Recent returns up to n most recent attempt rows, newest first.
func (s *Store) Recent(n int) ([]Row, error) {
	rows, err := s.db.Query(`
		SELECT turn_id, attempt, clean_len, emotion, flow, clarity, dialogue,
		       variety, aggregate, label, action, forced, COALESCE(reason, ''),
		       created_at
		FROM turn_attempts ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var forced int
		var created string
		if err := rows.Scan(&r.TurnID, &r.Attempt, &r.CleanLen,
			&r.Emotion, &r.Flow, &r.Clarity, &r.Dialogue, &r.Variety,
			&r.Aggregate, &r.Label, &r.Action, &forced, &r.Reason, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		r.Forced = forced != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion record

// #region metrics

// SaveMetrics upserts the single cumulative metrics row.
func (s *Store) SaveMetrics(m Metrics) error {
	_, err := s.db.Exec(`
		INSERT INTO session_metrics
		(id, total_outputs, total_regens, fatigue_detections, drift_detections,
		 empty_results, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_outputs = excluded.total_outputs,
			total_regens = excluded.total_regens,
			fatigue_detections = excluded.fatigue_detections,
			drift_detections = excluded.drift_detections,
			empty_results = excluded.empty_results,
			updated_at = excluded.updated_at`,
		m.TotalOutputs, m.TotalRegens, m.FatigueDetections, m.DriftDetections,
		m.EmptyResults, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save metrics: %w", err)
	}
	return nil
}

// LoadMetrics reads the cumulative metrics row; zero values if absent.
func (s *Store) LoadMetrics() (Metrics, error) {
	var m Metrics
	var updated string
	err := s.db.QueryRow(`
		SELECT total_outputs, total_regens, fatigue_detections,
		       drift_detections, empty_results, updated_at
		FROM session_metrics WHERE id = 1`).Scan(
		&m.TotalOutputs, &m.TotalRegens, &m.FatigueDetections,
		&m.DriftDetections, &m.EmptyResults, &updated)
	if err == sql.ErrNoRows {
		return Metrics{}, nil
	}
	if err != nil {
		return Metrics{}, fmt.Errorf("load metrics: %w", err)
	}
	m.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return m, nil
}

// #endregion metrics

// #region helpers

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
