package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:     "load <name|all>",
	Aliases: []string{"reload"},
	Short:   "Compile commands whose source changed",
	Long: `Compile a command, or every command with 'all', if its source is newer
than its binary or the binary is missing. Up-to-date commands are left alone.

With 'all', a command that fails to compile does not stop the others; each
failure is saved to a log and the run ends with a summary.

Examples:
  cmdload load greet
  cmdload reload all`,
	Args: requireArgs(1, 1, "load <name|all>"),
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	target := args[0]

	mgr, cleanup := mustNewManager()
	defer cleanup()

	report, err := mgr.Load(cmd.Context(), target)
	if err != nil && report == nil {
		exitWithError(exitCodeFor(err), "loading %s: %v", target, err)
	}

	if jsonOutput {
		outputJSON(report)
	} else {
		printLoadReport(report)
	}

	if err != nil {
		// The batch was cut short; what ran is already reported.
		exitWithError(exitCodeFor(err), "%v", err)
	}
	if !report.OK() {
		os.Exit(ExitCompileFailed)
	}
	return nil
}
