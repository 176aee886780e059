/*
PURPOSE:
  Defines the 'locate' subcommand.
  Helps debug model discovery on a device before starting the worker.

REQUIREMENTS:
  Implementation-discovered:
  - Uses the exact lookup order the worker uses (override, candidates, search).

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.ModelLocator

ERROR HANDLING:
  - Returns an error (exit 1) when no model is found.

USAGE:
  bench-worker locate
  HEF_PATH=/data/custom.hef bench-worker locate
*/

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-worker/internal/engine"
)

var locateOverrides configOverrides

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Print the model file the worker would benchmark",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(&locateOverrides)
		if err != nil {
			return err
		}

		hef, ok := engine.NewModelLocator(cfg).Locate()
		if !ok {
			return errors.New("no model found")
		}
		fmt.Fprintln(cmd.OutOrStdout(), hef)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateOverrides.bindModel(locateCmd.Flags())
}
