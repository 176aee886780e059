/*
PURPOSE:
  Resolves which .hef model artifact to benchmark.
  This is the Model Locator.

REQUIREMENTS:
  User-specified:
  - HEF_PATH override wins, but only if the file exists.
  - Then the well-known install locations, in order.
  - Then a filesystem search under the Hailo install roots.

  Implementation-discovered:
  - Missing search roots make find(1) exit non-zero even when other roots
    matched, so roots are filtered to existing directories first.
  - Permission-denied subdirectories also make find exit 1 while still
    printing matches; any printed match is used.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (SessionRunner), internal/cli (locate)
  - Uses: internal/config

ERROR HANDLING:
  - Never fails. A missing find binary, a failed search or no output all
    mean "not found".

IMPLEMENTATION RULES:
  - No state; a fresh lookup on every call, since models can be installed
    while the worker runs.

USAGE:
  loc := engine.NewModelLocator(cfg)
  if hef, ok := loc.Locate(); ok { ... }

RELATED FILES:
  - internal/config/config.go
*/

package engine

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/daryltucker/bench-worker/internal/config"
	"github.com/daryltucker/bench-worker/internal/output"
)

// Locator resolves a model path. ok is false when nothing was found.
type Locator interface {
	Locate() (path string, ok bool)
}

// ModelLocator implements Locator over the filesystem.
type ModelLocator struct {
	Override    string
	Candidates  []string
	SearchRoots []string
	Pattern     string
	// SearchTool is the find(1) binary; resolved through PATH.
	SearchTool string

	log *slog.Logger
}

// NewModelLocator creates a ModelLocator from the configuration.
func NewModelLocator(cfg *config.Config) *ModelLocator {
	return &ModelLocator{
		Override:    cfg.HEFPath,
		Candidates:  cfg.ModelCandidates,
		SearchRoots: cfg.SearchRoots,
		Pattern:     cfg.ModelPattern,
		SearchTool:  "find",
		log:         output.Logger,
	}
}

// Locate returns the first model found by override, candidates, then search.
func (l *ModelLocator) Locate() (string, bool) {
	if l.Override != "" {
		if exists(l.Override) {
			return l.Override, true
		}
		l.log.Debug("Model override does not exist, falling through", "path", l.Override)
	}

	for _, c := range l.Candidates {
		if exists(c) {
			return c, true
		}
	}

	return l.search()
}

func (l *ModelLocator) search() (string, bool) {
	var roots []string
	for _, r := range l.SearchRoots {
		if exists(r) {
			roots = append(roots, r)
		}
	}
	if len(roots) == 0 {
		return "", false
	}

	tool, err := exec.LookPath(l.SearchTool)
	if err != nil {
		l.log.Debug("Search tool unavailable", "tool", l.SearchTool, "error", err)
		return "", false
	}

	pattern := l.Pattern
	if pattern == "" {
		pattern = "*.hef"
	}
	args := append(roots, "-type", "f", "-name", pattern)

	out, err := exec.Command(tool, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			l.log.Debug("Model search failed", "error", err)
			return "", false
		}
	}

	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "", false
	}
	return first, true
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
