// Package history keeps an append-only SQLite log of session attempts.
//
// It is an audit trail only. Eligibility is always derived from the
// session directories, never from this database.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/daryltucker/bench-worker/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    session TEXT NOT NULL,
    status TEXT NOT NULL,
    model TEXT,
    hef TEXT,
    error TEXT,
    duration_sec REAL,
    fps_hw_only REAL,
    fps_streaming REAL,
    latency_ms REAL,
    recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session);
CREATE INDEX IF NOT EXISTS idx_attempts_recorded ON attempts(recorded_at);
`

// timeLayout is fixed-width so recorded_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Attempt is one recorded session attempt.
type Attempt struct {
	ID           string
	Session      string
	Status       string
	Model        string
	HEF          string
	Error        string
	DurationSec  *float64
	FPSHWOnly    *float64
	FPSStreaming *float64
	LatencyMs    *float64
	RecordedAt   time.Time
}

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens or creates the history database and initializes the schema
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// WAL lets the history command read while the worker writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record inserts an attempt for rec.
func (db *DB) Record(rec *model.ResultRecord) error {
	a := Attempt{
		ID:          uuid.NewString(),
		Session:     rec.Session,
		Status:      string(rec.Status),
		Model:       rec.Model,
		HEF:         rec.HEFPath(),
		Error:       rec.Error,
		DurationSec: rec.DurationSec,
		RecordedAt:  db.now().UTC(),
	}
	if s := rec.Summary; s != nil {
		a.FPSHWOnly = s.FPSHWOnly
		a.FPSStreaming = s.FPSStreaming
		a.LatencyMs = s.LatencyMs
	}
	return db.Insert(&a)
}

// Insert stores a.
func (db *DB) Insert(a *Attempt) error {
	_, err := db.conn.Exec(`
		INSERT INTO attempts (id, session, status, model, hef, error, duration_sec,
			fps_hw_only, fps_streaming, latency_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Session, a.Status, a.Model, a.HEF, a.Error, a.DurationSec,
		a.FPSHWOnly, a.FPSStreaming, a.LatencyMs, a.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// List returns the most recent attempts first. An empty session matches
// all sessions; limit <= 0 means no limit.
func (db *DB) List(session string, limit int) ([]*Attempt, error) {
	query := `SELECT id, session, status, model, hef, error, duration_sec,
			fps_hw_only, fps_streaming, latency_ms, recorded_at
		FROM attempts`
	var args []interface{}

	if session != "" {
		query += ` WHERE session = ?`
		args = append(args, session)
	}
	query += ` ORDER BY recorded_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		var a Attempt
		var modelName, hef, errText sql.NullString
		var recordedAt string

		err := rows.Scan(
			&a.ID, &a.Session, &a.Status, &modelName, &hef, &errText, &a.DurationSec,
			&a.FPSHWOnly, &a.FPSStreaming, &a.LatencyMs, &recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}

		a.Model = modelName.String
		a.HEF = hef.String
		a.Error = errText.String
		a.RecordedAt, _ = time.Parse(timeLayout, recordedAt)
		attempts = append(attempts, &a)
	}

	return attempts, rows.Err()
}
