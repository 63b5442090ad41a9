package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/config"
)

func init() {
	rootCmd.AddCommand(pathCmd)
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the registry directory",
	Long: `Print the registry directory, e.g. to add it to PATH:

  export PATH="$(cmdload path):$PATH"`,
	Args: requireArgs(0, 0, "path"),
	RunE: runPath,
}

func runPath(cmd *cobra.Command, args []string) error {
	root := registryRoot(mustLoadGlobalConfig())

	if jsonOutput {
		outputJSON(PathResponse{
			Root:    root,
			Logs:    config.LogsPath(root),
			History: config.HistoryPath(root),
		})
		return nil
	}
	fmt.Println(root)
	return nil
}
