package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/lifecycle"
)

var deleteYes bool

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking for confirmation")
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a command's source and binary",
	Long: `Delete a command's source file and compiled binary.

You are asked to confirm unless -y is given; only "y" or "Y" confirms.
Compiler logs are kept.`,
	Args: requireArgs(1, 1, "delete <name> [-y]"),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	mgr, cleanup := mustNewManager()
	defer cleanup()

	// Keep stdout clean for JSON.
	promptOut := cmd.OutOrStdout()
	if jsonOutput {
		promptOut = cmd.ErrOrStderr()
	}

	result, err := mgr.Delete(cmd.Context(), name, lifecycle.DeleteOptions{
		Force:   deleteYes,
		Confirm: lifecycle.PromptConfirm(cmd.InOrStdin(), promptOut),
	})
	if err != nil {
		exitWithError(exitCodeFor(err), "deleting command %s: %v", name, err)
	}

	if jsonOutput {
		outputJSON(result)
		return nil
	}

	switch {
	case !result.Confirmed:
		fmt.Println("Deletion cancelled.")
	case result.SourceRemoved || result.BinaryRemoved:
		fmt.Printf("%s Deleted command %s\n", okMark, name)
	default:
		fmt.Fprintf(os.Stderr, "Command %s did not exist.\n", name)
	}
	return nil
}
