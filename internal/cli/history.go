/*
PURPOSE:
  Defines the 'history' subcommand.
  Prints past attempts from the audit database, newest first.

ARCHITECTURE INTEGRATION:
  - Calls: internal/history.Open / List

ERROR HANDLING:
  - Returns an error when no history database is configured.

USAGE:
  bench-worker history --limit 20
  bench-worker history --session 2026-03-01_12-00-00
*/

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-worker/internal/history"
)

var (
	historySession string
	historyLimit   int
	historyDB      string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded benchmark attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		path := cfg.HistoryDB
		if historyDB != "" {
			path = historyDB
		}
		if path == "" {
			return errors.New("no history database configured (set history_db or --db)")
		}

		db, err := history.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		attempts, err := db.List(historySession, historyLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No attempts recorded")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RECORDED\tSESSION\tSTATUS\tMODEL\tDURATION\tFPS(HW)\tERROR")
		for _, a := range attempts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				a.RecordedAt.Local().Format("2006-01-02 15:04:05"),
				a.Session,
				a.Status,
				dash(a.Model),
				formatMetric(a.DurationSec, "s"),
				formatMetric(a.FPSHWOnly, ""),
				dash(a.Error),
			)
		}
		return w.Flush()
	},
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatMetric(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + unit
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historySession, "session", "", "only show attempts for this session")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum attempts to show (0 = all)")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "history database path (overrides config)")
}
