package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a command and recompile it",
	Long: `Open an existing command in the editor, then recompile it.

The command is recompiled when the editor exits, whether or not the file was
saved.`,
	Args: requireArgs(1, 1, "edit <name>"),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	name := args[0]

	mgr, cleanup := mustNewManager()
	defer cleanup()

	res, err := mgr.Edit(cmd.Context(), name)
	if err != nil {
		exitWithError(exitCodeFor(err), "editing command %s: %v", name, err)
	}

	if jsonOutput {
		outputJSON(res)
	} else {
		printBuildResult(*res)
	}

	if !res.OK() {
		os.Exit(ExitCompileFailed)
	}
	return nil
}
