package output

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("info", "json", &buf)
	l.Debug("hidden")
	l.Info("scan complete", "eligible", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug filtered): %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["msg"] != "scan complete" || entry["eligible"] != float64(2) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("debug", "text", &buf).Debug("settling", "session", "a")
	if !strings.Contains(buf.String(), "session=a") {
		t.Errorf("text output missing attr: %q", buf.String())
	}
}
