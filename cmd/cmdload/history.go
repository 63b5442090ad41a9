package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/history"
)

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", history.DefaultLimit, "Maximum number of entries")
}

var historyCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "Show recent compile attempts",
	Long: `Show recent compile attempts, newest first, for one command or all of them.

Failed attempts include the log id to pass to 'cmdload showlogs'.`,
	Args: requireArgs(0, 1, "history [name] [--limit N]"),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) == 1 {
		name = args[0]
	}

	cfg := mustLoadGlobalConfig()
	db := mustOpenHistory(registryRoot(cfg))
	defer db.Close()

	entries, err := db.Recent(name, historyLimit)
	if err != nil {
		exitWithError(ExitError, "reading history: %v", err)
	}

	if jsonOutput {
		if entries == nil {
			entries = []history.Entry{}
		}
		outputJSON(entries)
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No builds recorded.")
		return nil
	}
	for _, e := range entries {
		mark := okMark
		detail := formatDuration(e.Duration)
		if e.Status == history.StatusFailed {
			mark = failMark
			detail = fmt.Sprintf("exit %d, log %s", e.ExitCode, e.LogID)
		}
		fmt.Printf("%s %s  %-24s %s\n", mark, formatTime(e.StartedAt), e.Name, dimText.Sprint(detail))
	}
	return nil
}
