package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/registry"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List commands and whether they need rebuilding",
	Long: `List registered commands, optionally filtered by a glob on the name.

Examples:
  cmdload list
  cmdload list 'git-*'`,
	Args: requireArgs(0, 1, "list [pattern]"),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	var pattern string
	if len(args) == 1 {
		pattern = args[0]
	}

	mgr, cleanup := mustNewManager()
	defer cleanup()

	statuses, err := mgr.List(pattern)
	if err != nil {
		exitWithError(ExitError, "listing commands: %v", err)
	}

	if jsonOutput {
		if statuses == nil {
			statuses = []*registry.Status{}
		}
		outputJSON(statuses)
		return nil
	}

	if len(statuses) == 0 {
		fmt.Println("No commands found.")
		return nil
	}
	for _, st := range statuses {
		fmt.Printf("%s %-24s %s\n", statusMark(st), st.Name, dimText.Sprint(statusNote(st)))
	}
	return nil
}

func statusMark(st *registry.Status) string {
	if st.HasBinary && !st.Stale {
		return okMark
	}
	return failMark
}

func statusNote(st *registry.Status) string {
	switch {
	case !st.HasBinary:
		return "not built"
	case st.Stale:
		return "stale, modified " + formatTime(st.SourceModTime)
	default:
		return "built " + formatTime(st.BinaryModTime)
	}
}
