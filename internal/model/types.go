/*
PURPOSE:
  Defines the core data structures used throughout bench-worker.
  A ResultRecord is the single artifact written per session (results.json).

REQUIREMENTS:
  User-specified:
  - Record status, session, timestamp, model path and name, duration.
  - Record parsed metrics (FPS hw_only, FPS streaming, latency).
  - Record a bounded, ANSI-stripped tail of the raw benchmark output.

  Implementation-discovered:
  - Consumers poll results.json, so JSON field names are a wire contract.
  - Missing metrics must serialize as null, not 0.
  - "hef" must serialize as null when no model was found.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output, internal/history
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Pointer fields where null and zero differ (hef, metrics, duration, stderr).
  - Keep field order stable; it is the order written to disk.

USAGE:
  rec := model.NewRecord("session-01", hefPath, time.Now())

SELF-HEALING INSTRUCTIONS:
  - If a new metric is parsed, add it to Summary and to the history schema.

RELATED FILES:
  - internal/output/json.go
  - internal/engine/parser.go

MAINTENANCE:
  - Update when the results.json schema changes.
*/

package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Status is the lifecycle state written into results.json.
type Status string

const (
	StatusStarting Status = "starting"
	StatusOK       Status = "ok"
	StatusError    Status = "error"
)

// Error classifications that are not derived from an underlying error.
const (
	ErrNoModel         = "No HEF found"
	ErrBenchmarkFailed = "benchmark failed"
)

// Summary holds the metrics extracted from benchmark output.
// A nil field means the corresponding line was not present.
type Summary struct {
	FPSHWOnly    *float64 `json:"fps_hw_only"`
	FPSStreaming *float64 `json:"fps_streaming"`
	LatencyMs    *float64 `json:"latency_ms"`
}

// ResultRecord represents the outcome of a single session attempt.
type ResultRecord struct {
	Status      Status   `json:"status"`
	Session     string   `json:"session"`
	Timestamp   float64  `json:"ts"` // unix seconds
	HEF         *string  `json:"hef"`
	Summary     *Summary `json:"summary,omitempty"`
	Error       string   `json:"error,omitempty"`
	Stderr      *string  `json:"stderr,omitempty"`
	RawTail     string   `json:"raw_tail"`
	Model       string   `json:"model,omitempty"`
	DurationSec *float64 `json:"duration_sec,omitempty"`
}

// NewRecord returns a record in the starting state.
// An empty hef is recorded as null.
func NewRecord(session, hef string, now time.Time) *ResultRecord {
	rec := &ResultRecord{
		Status:    StatusStarting,
		Session:   session,
		Timestamp: float64(now.UnixNano()) / float64(time.Second),
	}
	if hef != "" {
		rec.HEF = &hef
	}
	return rec
}

// ModelName returns the file name of path without its final extension.
func ModelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HEFPath returns the recorded model path, or "" when none was resolved.
func (r *ResultRecord) HEFPath() string {
	if r.HEF == nil {
		return ""
	}
	return *r.HEF
}
