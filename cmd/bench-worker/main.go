/*
PURPOSE:
  Entry point for the bench-worker service.
  Hands control to the CLI and turns a returned error into exit status 1.

REQUIREMENTS:
  User-specified:
  - Single binary started by the host (systemd) as `bench-worker watch`.
  - A missing sessions root is fatal and reported on stderr.

  Implementation-discovered:
  - Cobra's own error output is silenced, so this is the only place
    that prints the final "Error:" line.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Execute() error -> "Error: <err>" on stderr, exit code 1.
  - Per-session failures never reach here; the scan loop contains them.

IMPLEMENTATION RULES:
  - Keep main() minimal. All logic belongs in internal/ packages.

USAGE:
  go build -o bench-worker ./cmd/bench-worker
  ./bench-worker watch --sessions /home/pi/appdata/sessions

RELATED FILES:
  - internal/cli/root.go
  - internal/cli/watch.go
*/

package main

import (
	"fmt"
	"os"

	"github.com/daryltucker/bench-worker/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
