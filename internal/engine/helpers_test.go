package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daryltucker/bench-worker/internal/config"
	"github.com/daryltucker/bench-worker/internal/output"
)

// writeScript creates an executable /bin/sh script standing in for hailortcli.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

// newSession creates root/name with a video.mp4 of the given content.
func newSession(t *testing.T, root, name, video string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "video.mp4"), []byte(video), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func testConfig(root, command string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.SessionsRoot = root
	cfg.BenchmarkCommand = command
	cfg.ScanInterval = 10 * time.Millisecond
	cfg.SettleDelay = time.Millisecond
	cfg.HEFPath = ""
	cfg.ModelCandidates = nil
	cfg.SearchRoots = nil
	return cfg
}

type stubLocator struct {
	path string
	ok   bool
}

func (s stubLocator) Locate() (string, bool) { return s.path, s.ok }

func newTestRunner(cfg *config.Config, loc Locator, recorders ...Recorder) *SessionRunner {
	r := NewSessionRunner(cfg, loc, recorders...)
	r.log = output.Discard()
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r
}

const successScript = `printf '\033[1;32mRunning benchmark\033[0m\n'
i=0
while [ $i -lt 30 ]; do echo "progress $i"; i=$((i+1)); done
echo "Summary"
echo "FPS (hw_only) = 120.5"
echo "    (streaming) = 118.25"
printf 'Latency (hw) = 7.9 ms\033[0m\n'
`

const failureScript = `i=0
while [ $i -lt 40 ]; do echo "line $i"; i=$((i+1)); done
printf '\033[31mdevice not found\033[0m\n' >&2
exit 3
`
