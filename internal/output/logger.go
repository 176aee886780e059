/*
PURPOSE:
  Provides a structured logger for bench-worker.
  Wraps slog for consistent output on the host's diagnostic stream (stderr).

REQUIREMENTS:
  User-specified:
  - Loop and per-session errors must reach the host's stderr sink.

  Implementation-discovered:
  - journald captures stderr; text is the readable default, JSON for shipping.
  - Needs Debug/Info/Warn/Error levels selectable from the CLI.

ARCHITECTURE INTEGRATION:
  - Used everywhere.
  - Configured once by internal/cli before any command runs.

ERROR HANDLING:
  - Unknown level/format strings fall back to info/text.

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.SetLogger(output.NewLogger("debug", "json", os.Stderr))
  output.Logger.Info("message", "key", "value")

RELATED FILES:
  - internal/cli/root.go
*/

package output

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// NewLogger builds a logger for the given level and format ("text" or "json").
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
