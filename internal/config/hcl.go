package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclConfig mirrors Config for gohcl. Every attribute is optional and a
// zero value leaves the default in place.
type hclConfig struct {
	SessionsRoot     string   `hcl:"sessions_root,optional"`
	ScanInterval     string   `hcl:"scan_interval,optional"`
	SettleDelay      string   `hcl:"settle_delay,optional"`
	InputFile        string   `hcl:"input_file,optional"`
	ResultFile       string   `hcl:"result_file,optional"`
	HEFPath          string   `hcl:"hef_path,optional"`
	ModelCandidates  []string `hcl:"model_candidates,optional"`
	SearchRoots      []string `hcl:"search_roots,optional"`
	ModelPattern     string   `hcl:"model_pattern,optional"`
	BenchmarkCommand string   `hcl:"benchmark_command,optional"`
	BenchmarkSeconds int      `hcl:"benchmark_seconds,optional"`
	SuccessTailLines int      `hcl:"success_tail_lines,optional"`
	FailureTailLines int      `hcl:"failure_tail_lines,optional"`
	HistoryDB        string   `hcl:"history_db,optional"`
	LedgerCSV        string   `hcl:"ledger_csv,optional"`
}

func decodeHCL(cfg *Config, path string, data []byte) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL config %s: %w", path, diags)
	}

	var raw hclConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL config %s: %w", path, diags)
	}

	return raw.apply(cfg)
}

func (h *hclConfig) apply(cfg *Config) error {
	setString(&cfg.SessionsRoot, h.SessionsRoot)
	setString(&cfg.InputFile, h.InputFile)
	setString(&cfg.ResultFile, h.ResultFile)
	setString(&cfg.HEFPath, h.HEFPath)
	setString(&cfg.ModelPattern, h.ModelPattern)
	setString(&cfg.BenchmarkCommand, h.BenchmarkCommand)
	setString(&cfg.HistoryDB, h.HistoryDB)
	setString(&cfg.LedgerCSV, h.LedgerCSV)

	if h.ModelCandidates != nil {
		cfg.ModelCandidates = h.ModelCandidates
	}
	if h.SearchRoots != nil {
		cfg.SearchRoots = h.SearchRoots
	}
	if h.BenchmarkSeconds != 0 {
		cfg.BenchmarkSeconds = h.BenchmarkSeconds
	}
	if h.SuccessTailLines != 0 {
		cfg.SuccessTailLines = h.SuccessTailLines
	}
	if h.FailureTailLines != 0 {
		cfg.FailureTailLines = h.FailureTailLines
	}

	if err := setDuration(&cfg.ScanInterval, h.ScanInterval, "scan_interval"); err != nil {
		return err
	}
	return setDuration(&cfg.SettleDelay, h.SettleDelay, "settle_delay")
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, name string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}
