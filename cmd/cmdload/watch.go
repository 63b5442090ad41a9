package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/lifecycle"
	"github.com/matsen/cmdload/internal/watch"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <name|all>",
	Short: "Recompile commands as their sources change",
	Long: `Load the command (or all commands), then keep recompiling whenever a
source file in the registry is saved. Stop with Ctrl-C.`,
	Args: requireArgs(1, 1, "watch <name|all>"),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	target := args[0]

	mgr, cleanup := mustNewManager()
	defer cleanup()

	w := watch.New(mgr.Registry(), mgr, target, watch.WithReport(printWatchReport))

	if !jsonOutput {
		fmt.Printf("Watching %s (Ctrl-C to stop)\n", mgr.Registry().Root())
	}
	if err := w.Run(cmd.Context()); err != nil {
		exitWithError(exitCodeFor(err), "watching %s: %v", target, err)
	}
	return nil
}

func printWatchReport(report *lifecycle.LoadReport, err error) {
	if report != nil {
		if jsonOutput {
			outputJSON(report)
		} else {
			printLoadReport(report)
		}
	}
	if err != nil {
		printWarning("%v", err)
	}
}
