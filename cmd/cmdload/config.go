package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  cmdload config                        # Show all config
  cmdload config toolchain              # Get specific value
  cmdload config toolchain rust         # Set value
  cmdload config editor "code --wait"   # Set editor command line

Keys:
  root        Registry directory (default ~/commands)
  editor      Editor command line (default $EDITOR, then vi or notepad)
  toolchain   Compiler preset: go, rust
  compiler    Compiler command line; $SRC, $OUT, $OUTDIR and $NAME are set
  source-ext  Source file extension (default from toolchain)
  binary-ext  Binary file suffix (default .exe on Windows, none elsewhere)
  lock        Serialize concurrent cmdload processes (true/false)
  log-level   Diagnostic log level: debug, info, warn, error`,
	Args: requireArgs(0, 2, "config [key] [value]"),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadGlobalConfig()

	// No args: show all config
	if len(args) == 0 {
		values := make(map[string]string, len(config.Keys))
		for _, key := range config.Keys {
			values[key], _ = cfg.Get(key)
		}
		if jsonOutput {
			outputJSON(values)
		} else {
			for _, key := range config.Keys {
				fmt.Printf("%-11s %s\n", key+":", values[key])
			}
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if jsonOutput {
			outputJSON(map[string]string{key: value})
		} else {
			fmt.Println(value)
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		code := ExitConfigError
		if errors.Is(err, config.ErrUnknownKey) {
			code = ExitError
		}
		exitWithError(code, "%v", err)
	}

	if err := cfg.Save(); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if jsonOutput {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	} else {
		fmt.Printf("Updated %s to %s\n", key, value)
	}

	return nil
}

// normalizeKey converts key formats (source-ext, source_ext, Source_Ext) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
