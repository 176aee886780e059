/*
PURPOSE:
  Appends one row per session attempt to a CSV ledger.
  Gives operators a spreadsheet-friendly view across all sessions.

REQUIREMENTS:
  User-specified:
  - Optional; enabled by ledger_csv in the config.

  Implementation-discovered:
  - The worker restarts under systemd, so the file is opened in append mode
    and the header is written only when the file is empty.
  - Rows are flushed immediately (crash resilience).

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (as a Recorder, after results.json is written)
  - Consumes: internal/model.ResultRecord

ERROR HANDLING:
  - Returns error on file open or write failure. The caller logs it; the
    ledger never affects results.json.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write.
  - Mutex-protected so it is safe to share.

USAGE:
  l, err := output.OpenCSVLedger("/var/lib/bench-worker/ledger.csv")
  l.Record(rec)
  l.Close()

SELF-HEALING INSTRUCTIONS:
  - If the header changes, rotate the old file; rows are not migrated.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update record() mapping when ResultRecord changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/bench-worker/internal/model"
)

var ledgerHeader = []string{
	"recorded_at", "session", "status", "model", "hef",
	"duration_s", "fps_hw_only", "fps_streaming", "latency_ms", "error",
}

// CSVLedger appends result rows to a CSV file.
type CSVLedger struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	now    func() time.Time
}

// OpenCSVLedger opens (or creates) the ledger at path for appending.
func OpenCSVLedger(path string) (*CSVLedger, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat ledger %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(ledgerHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSVLedger{
		file:   f,
		writer: w,
		now:    time.Now,
	}, nil
}

// Record appends a single result row.
func (l *CSVLedger) Record(rec *model.ResultRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := []string{
		l.now().UTC().Format(time.RFC3339),
		rec.Session,
		string(rec.Status),
		rec.Model,
		rec.HEFPath(),
		formatOptional(rec.DurationSec, 2),
		"", "", "",
		rec.Error,
	}
	if s := rec.Summary; s != nil {
		row[6] = formatOptional(s.FPSHWOnly, -1)
		row[7] = formatOptional(s.FPSStreaming, -1)
		row[8] = formatOptional(s.LatencyMs, -1)
	}

	if err := l.writer.Write(row); err != nil {
		return err
	}
	l.writer.Flush()
	return l.writer.Error()
}

// Close closes the underlying file.
func (l *CSVLedger) Close() error {
	l.writer.Flush()
	return l.file.Close()
}

func formatOptional(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
