/*
PURPOSE:
  Top-level driver. Periodically lists session directories and hands each
  eligible one to the session runner. This is the Scan Loop.

REQUIREMENTS:
  User-specified:
  - Eligible = video.mp4 present and results.json absent.
  - Sessions are processed one at a time (the accelerator is exclusive).
  - A failure in one session or in listing never stops the loop.
  - The sessions root must exist at startup, otherwise exit non-zero.

  Implementation-discovered:
  - Eligibility is re-derived from the filesystem every tick; there is no
    in-memory "seen" set, so a restart needs no recovery.
  - A panic while processing a session is recovered and logged like an error.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (watch)
  - Uses: Processor (SessionRunner)

ERROR HANDLING:
  - Logs errors but continues (resilience).
  - Returns ErrSessionsRootMissing from Run when the root is absent.

IMPLEMENTATION RULES:
  - Iterate directory entries in name order.
  - Sleep the fixed scan interval between ticks.
  - Stop only when ctx is cancelled (host shutdown), checked between ticks.

USAGE:
  sc := engine.NewScanner(cfg, runner)
  err := sc.Run(ctx)

RELATED FILES:
  - internal/engine/session.go

MAINTENANCE:
  - Update iteration logic if parallelism is ever introduced.
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/daryltucker/bench-worker/internal/config"
	"github.com/daryltucker/bench-worker/internal/output"
)

// ErrSessionsRootMissing is returned when the sessions root does not exist.
var ErrSessionsRootMissing = errors.New("missing sessions root")

// Processor handles a single eligible session directory.
type Processor interface {
	Process(sessionDir string) error
}

// Scanner drives the scan loop.
type Scanner struct {
	cfg       *config.Config
	processor Processor
	log       *slog.Logger
}

// NewScanner creates a Scanner.
func NewScanner(cfg *config.Config, processor Processor) *Scanner {
	return &Scanner{
		cfg:       cfg,
		processor: processor,
		log:       output.Logger,
	}
}

// CheckRoot verifies the startup precondition.
func (s *Scanner) CheckRoot() error {
	info, err := os.Stat(s.cfg.SessionsRoot)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrSessionsRootMissing, s.cfg.SessionsRoot)
	}
	return nil
}

// Run checks the root, then ticks until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.CheckRoot(); err != nil {
		return err
	}

	s.log.Info("Worker watching", "root", s.cfg.SessionsRoot, "interval", s.cfg.ScanInterval)

	for {
		s.Tick()

		select {
		case <-ctx.Done():
			s.log.Info("Worker stopped")
			return nil
		case <-time.After(s.cfg.ScanInterval):
		}
	}
}

// Tick performs one scan and returns how many sessions were dispatched.
func (s *Scanner) Tick() int {
	entries, err := os.ReadDir(s.cfg.SessionsRoot)
	if err != nil {
		s.log.Error("loop error", "error", err)
		return 0
	}

	dispatched := 0
	for _, entry := range entries {
		dir := filepath.Join(s.cfg.SessionsRoot, entry.Name())
		if !isDir(dir) || !s.Eligible(dir) {
			continue
		}
		dispatched++
		if err := s.dispatch(dir); err != nil {
			s.log.Error("loop error", "session", entry.Name(), "error", err)
		}
	}
	return dispatched
}

// Eligible reports whether dir has an input and no result yet.
func (s *Scanner) Eligible(dir string) bool {
	if _, err := os.Stat(s.cfg.InputPath(dir)); err != nil {
		return false
	}
	_, err := os.Stat(s.cfg.ResultPath(dir))
	return errors.Is(err, fs.ErrNotExist)
}

func (s *Scanner) dispatch(dir string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic processing %s: %v", dir, p)
		}
	}()
	return s.processor.Process(dir)
}

// isDir follows symlinks, so linked session directories are scanned too.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
