package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daryltucker/bench-worker/internal/engine"
	"github.com/daryltucker/bench-worker/internal/history"
	"github.com/daryltucker/bench-worker/internal/output"
)

const benchOutput = "Running\nFPS (hw_only) = 120.5\nLatency (hw) = 7.9 ms\n"

// execute runs the root command with args, isolated from the caller's
// environment and from flag values left over by earlier runs.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("HEF_PATH", "")
	t.Setenv("BENCH_WORKER_SESSIONS", "")
	t.Setenv("BENCH_WORKER_CONFIG", "")

	cfgFile, logLevel, logFormat = "", "error", "text"
	watchOverrides, locateOverrides = configOverrides{}, configOverrides{}
	watchOnce = false
	historySession, historyLimit, historyDB = "", 20, ""

	logger := output.Logger
	t.Cleanup(func() { output.SetLogger(logger) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench-worker.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	os.WriteFile(path, []byte(benchOutput), 0644)

	out, err := execute(t, "", "parse", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got["fps_hw_only"] != 120.5 || got["latency_ms"] != 7.9 {
		t.Errorf("unexpected summary: %v", got)
	}
	if v, ok := got["fps_streaming"]; !ok || v != nil {
		t.Errorf("fps_streaming should be null, got %v", v)
	}
}

func TestParseCommand_Stdin(t *testing.T) {
	out, err := execute(t, benchOutput, "parse")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, `"fps_hw_only": 120.5`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestParseCommand_MissingFile(t *testing.T) {
	if _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWatchOnce(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "sessions")
	session := filepath.Join(root, "s1")
	os.MkdirAll(session, 0755)
	os.WriteFile(filepath.Join(session, "video.mp4"), []byte("frames"), 0644)

	script := filepath.Join(dir, "hailortcli")
	os.WriteFile(script, []byte("#!/bin/sh\nprintf '"+strings.ReplaceAll(benchOutput, "\n", `\n`)+"'\n"), 0755)
	hef := filepath.Join(dir, "yolov5m_seg.hef")
	os.WriteFile(hef, []byte("model"), 0644)

	historyPath := filepath.Join(dir, "history.db")
	ledgerPath := filepath.Join(dir, "ledger.csv")
	cfg := writeConfig(t, "sessions_root: /nonexistent\n"+
		"benchmark_command: "+script+"\n"+
		"settle_delay: 1ms\n"+
		"model_candidates: []\n"+
		"search_roots: []\n"+
		"history_db: "+historyPath+"\n"+
		"ledger_csv: "+ledgerPath+"\n")

	if _, err := execute(t, "", "watch", "--once", "--config", cfg, "--sessions", root, "--hef", hef); err != nil {
		t.Fatalf("watch --once: %v", err)
	}

	rec, err := output.ReadResult(filepath.Join(session, "results.json"))
	if err != nil {
		t.Fatalf("no result written: %v", err)
	}
	if rec.Status != "ok" || rec.Model != "yolov5m_seg" {
		t.Errorf("status/model = %s/%s (error %q)", rec.Status, rec.Model, rec.Error)
	}

	db, err := history.Open(historyPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	attempts, err := db.List("s1", 0)
	if err != nil || len(attempts) != 1 {
		t.Fatalf("history = %v, %v; want one attempt", attempts, err)
	}

	ledger, err := os.ReadFile(ledgerPath)
	if err != nil {
		t.Fatalf("ledger not written: %v", err)
	}
	if lines := strings.Count(string(ledger), "\n"); lines != 2 {
		t.Errorf("ledger has %d lines, want header + 1 row", lines)
	}
}

func TestWatch_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	_, err := execute(t, "", "watch", "--sessions", missing)
	if !errors.Is(err, engine.ErrSessionsRootMissing) {
		t.Fatalf("watch = %v, want ErrSessionsRootMissing", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error should name the root: %v", err)
	}
}

func TestWatch_InvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "scan_interval: 0s\n")
	if _, err := execute(t, "", "watch", "--once", "--config", cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLocate(t *testing.T) {
	cfg := writeConfig(t, "model_candidates: []\nsearch_roots: []\n")

	if _, err := execute(t, "", "locate", "--config", cfg); err == nil || err.Error() != "no model found" {
		t.Errorf("locate without model = %v", err)
	}

	hef := filepath.Join(t.TempDir(), "custom.hef")
	os.WriteFile(hef, []byte("m"), 0644)
	out, err := execute(t, "", "locate", "--config", cfg, "--hef", hef)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if strings.TrimSpace(out) != hef {
		t.Errorf("locate printed %q, want %q", out, hef)
	}
}

func TestHistory(t *testing.T) {
	if _, err := execute(t, "", "history"); err == nil {
		t.Error("expected error without a configured database")
	}

	path := filepath.Join(t.TempDir(), "history.db")
	out, err := execute(t, "", "history", "--db", path)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No attempts recorded") {
		t.Errorf("unexpected output: %q", out)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
