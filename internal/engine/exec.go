package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandResult contains the outcome of a captured command execution.
type CommandResult struct {
	Command  string
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	// Err is nil on exit code 0. An *exec.ExitError means the process ran
	// and failed; anything else means it could not be run at all.
	Err error
}

// Exited reports whether the process ran to completion with a non-zero code.
func (r *CommandResult) Exited() bool {
	var exitErr *exec.ExitError
	return errors.As(r.Err, &exitErr)
}

// Success returns true if the command executed successfully.
func (r *CommandResult) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// String returns a human-readable summary of the result.
func (r *CommandResult) String() string {
	status := "success"
	if !r.Success() {
		status = fmt.Sprintf("failed (exit code %d)", r.ExitCode)
	}
	return fmt.Sprintf("%s %s: %s (%.3fs)",
		r.Command, strings.Join(r.Args, " "), status, r.Duration.Seconds())
}

// RunCommand executes a command synchronously, capturing stdout and stderr
// and timing only the process itself. There is no timeout: the command runs
// until it exits.
func RunCommand(command string, args ...string) *CommandResult {
	result := &CommandResult{
		Command: command,
		Args:    args,
	}

	cmd := exec.Command(command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Err = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	return result
}
