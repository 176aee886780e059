package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-worker/internal/engine"
)

// parseCmd runs the summary extractor over saved benchmark output.
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract the benchmark summary from saved tool output",
	Long: `Reads hailortcli benchmark output from a file (or stdin when no file or
"-" is given) and prints the extracted summary as JSON. Metrics that are
not present print as null.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open output file: %w", err)
			}
			defer f.Close()
			r = f
		}

		text, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read output: %w", err)
		}

		data, err := json.MarshalIndent(engine.ParseSummary(string(text)), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
