/*
PURPOSE:
  Implements the `watch` command, the long-running worker.
  Scans the sessions root on a fixed interval and benchmarks each
  session that has an input video and no result yet.

REQUIREMENTS:
  User-specified:
  - Fail fast when the sessions root is missing.
  - Run until stopped by the host (SIGINT / SIGTERM).

  Implementation-discovered:
  - `--once` runs a single scan, for cron-style use and debugging.
  - History DB and CSV ledger are optional audit recorders. Failing to
    open one is logged and the worker carries on without it.

ARCHITECTURE INTEGRATION:
  - Called by: root.go
  - Calls: engine.NewScanner, engine.NewSessionRunner, engine.NewModelLocator
  - Calls: history.Open, output.OpenCSVLedger

ERROR HANDLING:
  - Config and sessions-root errors are returned (exit 1).
  - Everything after startup is contained in the scan loop.

RELATED FILES:
  - internal/engine/scanner.go
  - internal/engine/session.go
*/

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-worker/internal/config"
	"github.com/daryltucker/bench-worker/internal/engine"
	"github.com/daryltucker/bench-worker/internal/history"
	"github.com/daryltucker/bench-worker/internal/output"
)

var (
	watchOverrides configOverrides
	watchOnce      bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the sessions directory and benchmark new sessions",
	Long: `Scans the sessions root every interval. A session folder with video.mp4
and no results.json is benchmarked once; its results.json is then written
atomically and the session is never touched again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(&watchOverrides)
		if err != nil {
			return err
		}

		recorders, closeRecorders := openRecorders(cfg)
		defer closeRecorders()

		runner := engine.NewSessionRunner(cfg, engine.NewModelLocator(cfg), recorders...)
		scanner := engine.NewScanner(cfg, runner)

		if watchOnce {
			if err := scanner.CheckRoot(); err != nil {
				return err
			}
			n := scanner.Tick()
			output.Logger.Info("Scan complete", "sessions", n)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return scanner.Run(ctx)
	},
}

// openRecorders opens the configured audit sinks. The returned func
// closes whatever was opened.
func openRecorders(cfg *config.Config) ([]engine.Recorder, func()) {
	var recorders []engine.Recorder
	var closers []func() error

	if cfg.HistoryDB != "" {
		db, err := history.Open(cfg.HistoryDB)
		if err != nil {
			output.Logger.Error("History disabled", "path", cfg.HistoryDB, "error", err)
		} else {
			recorders = append(recorders, db)
			closers = append(closers, db.Close)
		}
	}

	if cfg.LedgerCSV != "" {
		ledger, err := output.OpenCSVLedger(cfg.LedgerCSV)
		if err != nil {
			output.Logger.Error("CSV ledger disabled", "path", cfg.LedgerCSV, "error", err)
		} else {
			recorders = append(recorders, ledger)
			closers = append(closers, ledger.Close)
		}
	}

	return recorders, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				output.Logger.Warn("Failed to close recorder", "error", err)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchOverrides.bindSessions(watchCmd.Flags())
	watchOverrides.bindModel(watchCmd.Flags())
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single scan and exit")
}
