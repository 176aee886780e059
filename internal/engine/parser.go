package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/daryltucker/bench-worker/internal/model"
)

var (
	reFPSHWOnly    = regexp.MustCompile(`FPS\s*\(hw_only\)\s*=\s*([0-9.]+)`)
	reFPSStreaming = regexp.MustCompile(`\(streaming\)\s*=\s*([0-9.]+)`)
	reLatencyHW    = regexp.MustCompile(`Latency\s*\(hw\)\s*=\s*([0-9.]+)\s*ms`)
)

// ParseSummary extracts the hailortcli benchmark metrics from text.
// Each metric is searched independently; a missing or malformed value
// leaves that field nil.
func ParseSummary(text string) model.Summary {
	return model.Summary{
		FPSHWOnly:    findFloat(reFPSHWOnly, text),
		FPSStreaming: findFloat(reFPSStreaming, text),
		LatencyMs:    findFloat(reLatencyHW, text),
	}
}

func findFloat(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// lineBreaks normalizes the carriage returns hailortcli uses for its
// progress bar, so each redraw counts as a line.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Tail returns the last n lines of text after trimming surrounding
// whitespace, with terminal escape sequences removed.
func Tail(text string, n int) string {
	text = strings.TrimSpace(lineBreaks.Replace(text))
	if text == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return StripControl(strings.Join(lines, "\n"))
}

// StripControl removes ANSI escape sequences.
func StripControl(s string) string {
	return ansi.Strip(lineBreaks.Replace(s))
}
