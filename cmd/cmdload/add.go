package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/fetch"
	"github.com/matsen/cmdload/internal/lifecycle"
)

var addNoEdit bool

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVar(&addNoEdit, "no-edit", false, "Compile without opening the editor")
}

var addCmd = &cobra.Command{
	Use:     "add <name> [url|path]",
	Aliases: []string{"cnc"},
	Short:   "Create a new command",
	Long: `Create a new command, open it in the editor and compile it.

The initial source is the toolchain's hello-world template, a copy of a local
file, or the body of an http(s) URL. If the command already exists, a given
source replaces it; without one the existing source is kept.

Examples:
  cmdload add greet
  cmdload cnc fetchjson https://example.com/snippets/fetchjson.go
  cmdload add --no-edit tidy ~/scratch/tidy.go`,
	Args: requireArgs(1, 2, "add <name> [url|path]"),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	var sourceArg string
	if len(args) == 2 {
		sourceArg = args[1]
	}

	mgr, cleanup := mustNewManager()
	defer cleanup()

	result, err := mgr.Add(cmd.Context(), name, fetch.Resolve(sourceArg), lifecycle.AddOptions{NoEdit: addNoEdit})
	if err != nil {
		exitWithError(exitCodeFor(err), "adding command %s: %v", name, err)
	}

	if jsonOutput {
		outputJSON(result)
	} else {
		switch {
		case result.Overwritten:
			printWarning("command %s already existed; its source was replaced", name)
		case result.Existed:
			fmt.Printf("Command %s already exists; keeping its source.\n", name)
		default:
			fmt.Printf("Created %s\n", result.Path)
		}
		printBuildResult(result.Build)
	}

	if !result.Build.OK() {
		os.Exit(ExitCompileFailed)
	}
	return nil
}
