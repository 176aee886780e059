/*
PURPOSE:
  Defines the root Cobra command for the bench-worker CLI.
  Handles global flags, logger setup and shared config loading.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface the host (systemd) can start.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Logger must be configured before any subcommand logs.
  - Flag overrides beat the config file, which beats defaults.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/bench-worker/main.go
  - Calls: Child commands (watch, locate, parse, history)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.
  - Cobra's own error printing is silenced; main prints once.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Config is loaded per command and passed down explicitly.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to init().

RELATED FILES:
  - cmd/bench-worker/main.go
  - internal/config/config.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/daryltucker/bench-worker/internal/config"
	"github.com/daryltucker/bench-worker/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "bench-worker",
		Short: "Benchmarks the Hailo model for each completed recording session",
		Long: `bench-worker watches a sessions directory. When a session folder has a
video.mp4 but no results.json, it runs 'hailortcli benchmark' against the
detected .hef model and writes the outcome to results.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetLogger(output.NewLogger(logLevel, logFormat, cmd.ErrOrStderr()))
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bench-worker.yaml, $BENCH_WORKER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

// configOverrides holds command-line values that replace config file values.
type configOverrides struct {
	sessions string
	hef      string
	interval time.Duration
}

func (o *configOverrides) bindSessions(fs *pflag.FlagSet) {
	fs.StringVarP(&o.sessions, "sessions", "s", "", "sessions root directory (overrides config)")
	fs.DurationVar(&o.interval, "interval", 0, "delay between scans (overrides config)")
}

func (o *configOverrides) bindModel(fs *pflag.FlagSet) {
	fs.StringVar(&o.hef, "hef", "", "model override path, like $HEF_PATH")
}

func (o *configOverrides) apply(cfg *config.Config) {
	if o.sessions != "" {
		cfg.SessionsRoot = o.sessions
	}
	if o.hef != "" {
		cfg.HEFPath = o.hef
	}
	if o.interval > 0 {
		cfg.ScanInterval = o.interval
	}
}

// loadConfig loads the config file, applies overrides and validates.
func loadConfig(o *configOverrides) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if o != nil {
		o.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	output.Logger.Debug("Configuration loaded", "sessions_root", cfg.SessionsRoot, "hef_path", cfg.HEFPath)
	return cfg, nil
}
