/*
PURPOSE:
  Defines the configuration structure and loading logic for bench-worker.
  One Config is built at startup and handed to the scanner and session runner.

REQUIREMENTS:
  User-specified:
  - Sessions root, scan interval and model override must be configurable.
  - HEF_PATH environment variable overrides the model path.

  Implementation-discovered:
  - Needs to support YAML parsing (default) and HCL files (*.hcl).
  - Systemd units set environment, so env overrides are applied last.
  - Durations are written as strings ("2s") in both formats.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3, github.com/hashicorp/hcl/v2

ERROR HANDLING:
  - Returns explicit error if an explicitly named file is missing or invalid.
  - A missing default file is not an error; defaults are used.

IMPLEMENTATION RULES:
  - No package-level mutable state. Callers own the *Config.
  - Defaults mirror the deployed worker on the Pi.

USAGE:
  cfg, err := config.Load("")
  if err := cfg.Validate(); err != nil { ... }

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config, hclConfig and DefaultConfig().

RELATED FILES:
  - internal/config/hcl.go
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvHEFPath      = "HEF_PATH"
	EnvSessionsRoot = "BENCH_WORKER_SESSIONS"
	EnvConfigPath   = "BENCH_WORKER_CONFIG"
)

// Config represents the full configuration for bench-worker.
type Config struct {
	SessionsRoot string        `yaml:"sessions_root"`
	ScanInterval time.Duration `yaml:"scan_interval"`
	// SettleDelay is the pause between the two size samples of the input file.
	SettleDelay time.Duration `yaml:"settle_delay"`
	InputFile   string        `yaml:"input_file"`
	ResultFile  string        `yaml:"result_file"`

	// HEFPath is the model override. It is only used if it exists on disk.
	HEFPath         string   `yaml:"hef_path"`
	ModelCandidates []string `yaml:"model_candidates"`
	SearchRoots     []string `yaml:"search_roots"`
	ModelPattern    string   `yaml:"model_pattern"`

	BenchmarkCommand string `yaml:"benchmark_command"`
	BenchmarkSeconds int    `yaml:"benchmark_seconds"`
	SuccessTailLines int    `yaml:"success_tail_lines"`
	FailureTailLines int    `yaml:"failure_tail_lines"`

	// Optional audit sinks. Empty disables them.
	HistoryDB string `yaml:"history_db"`
	LedgerCSV string `yaml:"ledger_csv"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SessionsRoot: "/home/pi/appdata/sessions",
		ScanInterval: 2 * time.Second,
		SettleDelay:  1 * time.Second,
		InputFile:    "video.mp4",
		ResultFile:   "results.json",
		ModelCandidates: []string{
			"/opt/hailo/models/sample.hef",
			"/usr/local/hailo/resources/models/hailo8/yolov5m_seg.hef",
		},
		SearchRoots: []string{
			"/usr/local/hailo/resources/models",
			"/opt/hailo",
		},
		ModelPattern:     "*.hef",
		BenchmarkCommand: "hailortcli",
		BenchmarkSeconds: 5,
		SuccessTailLines: 12,
		FailureTailLines: 20,
	}
}

// DefaultPaths are searched in order when no config path is given.
var DefaultPaths = []string{
	"bench-worker.yaml",
	"bench-worker.hcl",
	"/etc/bench-worker/config.yaml",
}

// Load reads configuration from a file and applies environment overrides.
// If path is empty, BENCH_WORKER_CONFIG is consulted, then DefaultPaths.
// If no file is found, the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	} else {
		for _, name := range DefaultPaths {
			err := loadFile(cfg, name)
			if err == nil {
				break
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// loadFile decodes path into cfg, picking the format from the extension.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return decodeHCL(cfg, path, data)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvHEFPath); v != "" {
		c.HEFPath = v
	}
	if v := os.Getenv(EnvSessionsRoot); v != "" {
		c.SessionsRoot = v
	}
}

// Validate reports settings the worker cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.SessionsRoot == "" {
		errs = append(errs, errors.New("sessions_root must not be empty"))
	}
	if c.ScanInterval <= 0 {
		errs = append(errs, fmt.Errorf("scan_interval must be positive, got %s", c.ScanInterval))
	}
	if c.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("settle_delay must not be negative, got %s", c.SettleDelay))
	}
	if c.InputFile == "" || c.ResultFile == "" {
		errs = append(errs, errors.New("input_file and result_file must be set"))
	}
	if c.BenchmarkCommand == "" {
		errs = append(errs, errors.New("benchmark_command must not be empty"))
	}
	if c.BenchmarkSeconds <= 0 {
		errs = append(errs, fmt.Errorf("benchmark_seconds must be positive, got %d", c.BenchmarkSeconds))
	}
	if c.SuccessTailLines <= 0 || c.FailureTailLines <= 0 {
		errs = append(errs, errors.New("tail line counts must be positive"))
	}
	return errors.Join(errs...)
}

// InputPath returns the input marker path for a session directory.
func (c *Config) InputPath(sessionDir string) string {
	return filepath.Join(sessionDir, c.InputFile)
}

// ResultPath returns the result marker path for a session directory.
func (c *Config) ResultPath(sessionDir string) string {
	return filepath.Join(sessionDir, c.ResultFile)
}
