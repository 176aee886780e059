/*
PURPOSE:
  Runs exactly one benchmark attempt for a session directory and guarantees
  a results.json is written for it. This is the Session Runner.

REQUIREMENTS:
  User-specified:
  - No model found: write an error result and skip the benchmark.
  - Wait for video.mp4 to stop growing before benchmarking.
  - Run `hailortcli benchmark -t 5 <hef>`, time it, classify the outcome.
  - Success: parse metrics, keep the last 12 stdout lines.
  - Non-zero exit: keep stderr and the last 20 stdout lines.
  - Any other failure: record the error text.

  Implementation-discovered:
  - Escape sequences from the CLI's progress output must not reach the JSON.
  - Duration covers the subprocess only, never the settle wait.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Scanner)
  - Uses: Locator, RunCommand, ParseSummary, internal/output.WriteResult
  - Notifies: Recorders (history DB, CSV ledger) after the write.

ERROR HANDLING:
  - Every attempt outcome becomes a result record; only a failed write of
    results.json is returned as an error.
  - Recorder failures are logged and swallowed.

IMPLEMENTATION RULES:
  - Sequential and synchronous. No external kill timeout on the benchmark.
  - Never more than two settle delays.

USAGE:
  r := engine.NewSessionRunner(cfg, engine.NewModelLocator(cfg), historyDB)
  rec, err := r.Run("/home/pi/appdata/sessions/2025-01-01T10-00-00")

RELATED FILES:
  - internal/engine/scanner.go
  - internal/output/json.go
*/

package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/daryltucker/bench-worker/internal/config"
	"github.com/daryltucker/bench-worker/internal/model"
	"github.com/daryltucker/bench-worker/internal/output"
)

// Recorder receives every result after it has been written to disk.
type Recorder interface {
	Record(rec *model.ResultRecord) error
}

// SessionRunner executes benchmark attempts.
type SessionRunner struct {
	cfg       *config.Config
	locator   Locator
	recorders []Recorder

	log   *slog.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewSessionRunner creates a SessionRunner.
func NewSessionRunner(cfg *config.Config, locator Locator, recorders ...Recorder) *SessionRunner {
	return &SessionRunner{
		cfg:       cfg,
		locator:   locator,
		recorders: recorders,
		log:       output.Logger,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Process runs a session and discards the record. It satisfies Processor.
func (r *SessionRunner) Process(sessionDir string) error {
	_, err := r.Run(sessionDir)
	return err
}

// Run performs one attempt and writes its result.
func (r *SessionRunner) Run(sessionDir string) (*model.ResultRecord, error) {
	name := filepath.Base(sessionDir)
	log := r.log.With("session", name)

	hef, ok := r.locator.Locate()
	rec := model.NewRecord(name, hef, r.now())

	if !ok {
		log.Error("No model found")
		rec.Status = model.StatusError
		rec.Error = model.ErrNoModel
		return rec, r.persist(sessionDir, rec, log)
	}

	r.waitForStableInput(r.cfg.InputPath(sessionDir), log)

	log.Info("Running benchmark", "hef", hef)
	res := r.invoke(hef)
	r.classify(rec, hef, res)

	if rec.Status == model.StatusOK {
		log.Info("Benchmark Success",
			"model", rec.Model,
			"duration_sec", *rec.DurationSec,
			"fps_hw_only", floatAttr(rec.Summary.FPSHWOnly),
			"latency_ms", floatAttr(rec.Summary.LatencyMs),
		)
	} else {
		log.Error("Benchmark Failed", "model", rec.Model, "error", rec.Error, "exit_code", res.ExitCode)
	}

	return rec, r.persist(sessionDir, rec, log)
}

// invoke runs the benchmark tool. A panic is reported as a launch failure
// so the attempt still ends with a result.
func (r *SessionRunner) invoke(hef string) (res *CommandResult) {
	defer func() {
		if p := recover(); p != nil {
			res = &CommandResult{Err: fmt.Errorf("panic: %v", p), ExitCode: -1}
		}
	}()
	return RunCommand(r.cfg.BenchmarkCommand,
		"benchmark", "-t", strconv.Itoa(r.cfg.BenchmarkSeconds), hef)
}

func (r *SessionRunner) classify(rec *model.ResultRecord, hef string, res *CommandResult) {
	dur := roundSeconds(res.Duration)
	rec.Model = model.ModelName(hef)
	rec.DurationSec = &dur

	switch {
	case res.Err == nil:
		summary := ParseSummary(res.Stdout)
		rec.Status = model.StatusOK
		rec.Summary = &summary
		rec.RawTail = Tail(res.Stdout, r.cfg.SuccessTailLines)

	case res.Exited():
		stderr := StripControl(res.Stderr)
		rec.Status = model.StatusError
		rec.Error = model.ErrBenchmarkFailed
		rec.Stderr = &stderr
		rec.RawTail = Tail(res.Stdout, r.cfg.FailureTailLines)

	default:
		rec.Status = model.StatusError
		rec.Error = res.Err.Error()
		rec.RawTail = ""
	}
}

// waitForStableInput samples the input size twice, one settle delay apart,
// and waits one more delay if it changed. A missing input skips the wait.
func (r *SessionRunner) waitForStableInput(path string, log *slog.Logger) {
	before, err := fileSize(path)
	if err != nil {
		logSizeErr(log, path, err)
		return
	}
	r.sleep(r.cfg.SettleDelay)

	after, err := fileSize(path)
	if err != nil {
		logSizeErr(log, path, err)
		return
	}
	if after != before {
		log.Debug("Input still growing, waiting once more", "before", before, "after", after)
		r.sleep(r.cfg.SettleDelay)
	}
}

func (r *SessionRunner) persist(sessionDir string, rec *model.ResultRecord, log *slog.Logger) error {
	path := r.cfg.ResultPath(sessionDir)
	if err := output.WriteResult(path, rec); err != nil {
		return fmt.Errorf("writing result for %s: %w", rec.Session, err)
	}
	log.Info("Result written", "path", path, "status", rec.Status)

	for _, rc := range r.recorders {
		if err := rc.Record(rec); err != nil {
			log.Error("Failed to record attempt", "recorder", fmt.Sprintf("%T", rc), "error", err)
		}
	}
	return nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func logSizeErr(log *slog.Logger, path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	log.Warn("Could not sample input size, proceeding", "path", path, "error", err)
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

func floatAttr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
