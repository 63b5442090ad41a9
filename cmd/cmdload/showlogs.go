package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/lifecycle"
)

func init() {
	rootCmd.AddCommand(showlogsCmd)
}

var showlogsCmd = &cobra.Command{
	Use:   "showlogs <id|0>",
	Short: "Show a compiler log",
	Long: `Print the compiler output saved for a failed build.

The id is printed when a compile fails. Use 0 to print the logs directory
and the logs it contains, newest first.`,
	Args: requireArgs(1, 1, "showlogs <id|0>"),
	RunE: runShowlogs,
}

func runShowlogs(cmd *cobra.Command, args []string) error {
	id := args[0]

	mgr, cleanup := mustNewManager()
	defer cleanup()

	result, err := mgr.ShowLogs(id)
	if err != nil {
		exitWithError(exitCodeFor(err), "showing log %s: %v", id, err)
	}

	if jsonOutput {
		outputJSON(result)
		return nil
	}

	if result.ID != lifecycle.LogsDirID {
		fmt.Print(result.Content)
		return nil
	}

	fmt.Println(result.Dir)
	for _, rec := range result.Records {
		fmt.Printf("  %s  %s\n", rec.ID, dimText.Sprint(formatTime(rec.Created)))
	}
	return nil
}
