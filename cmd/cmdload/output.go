package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/matsen/cmdload/internal/lifecycle"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	warnText = color.New(color.FgYellow)
	dimText  = color.New(color.FgHiBlack)
)

// Batch summaries.
const (
	summaryAllLoaded  = "All commands loaded successfully."
	summarySomeFailed = "Some commands failed to load. Check logs for details."
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		outputJSON(ErrorResponse{Error: msg})
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", failMark, msg)
	}
	os.Exit(code)
}

// printWarning writes a warning to stderr in human mode.
func printWarning(format string, args ...interface{}) {
	if jsonOutput {
		return
	}
	fmt.Fprintln(os.Stderr, warnText.Sprintf("warning: "+format, args...))
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PathResponse is the response for the path command.
type PathResponse struct {
	Root    string `json:"root"`
	Logs    string `json:"logs"`
	History string `json:"history"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// buildMessage describes one build outcome for humans.
func buildMessage(res lifecycle.BuildResult) string {
	switch res.Status {
	case lifecycle.StatusBuilt:
		return fmt.Sprintf("%s Compiled %s", okMark, res.Name)
	case lifecycle.StatusUpToDate:
		return fmt.Sprintf("%s %s is up to date", okMark, res.Name)
	case lifecycle.StatusFailed:
		return fmt.Sprintf("%s Failed to compile command %s. See 'cmdload showlogs %s'.", failMark, res.Name, res.LogID)
	default:
		return fmt.Sprintf("%s %s: %s", failMark, res.Name, res.Error)
	}
}

// printBuildResult prints one build outcome. Failures go to stderr.
func printBuildResult(res lifecycle.BuildResult) {
	if res.OK() {
		fmt.Println(buildMessage(res))
	} else {
		fmt.Fprintln(os.Stderr, buildMessage(res))
	}
}

// printLoadReport prints every result followed by the batch summary.
func printLoadReport(report *lifecycle.LoadReport) {
	for _, res := range report.Results {
		printBuildResult(res)
	}
	if report.Target != lifecycle.AllTarget {
		return
	}
	if len(report.Results) == 0 {
		fmt.Println(dimText.Sprint("No commands registered."))
	}
	if report.OK() {
		fmt.Println(summaryAllLoaded)
	} else {
		fmt.Fprintln(os.Stderr, summarySomeFailed)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatTime formats a timestamp in local time for listings.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
