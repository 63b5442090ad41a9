// Package main provides the cmdload CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/cmdload/internal/config"
	"github.com/matsen/cmdload/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// jsonOutput switches every command to machine-readable output.
	jsonOutput bool
	rootFlag   string
	verbose    bool
)

func main() {
	os.Exit(execute())
}

func execute() int {
	// Interrupts cancel the context, which kills a running editor or compiler.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, usage.msg)
			return ExitSuccess
		}
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return ExitError
	}
	return ExitSuccess
}

var rootCmd = &cobra.Command{
	Use:   "cmdload",
	Short: "Manage personal compiled command snippets",
	Long: `cmdload keeps a personal collection of small programs ("commands").

Each command is a single source file in the registry directory. cmdload
creates it from a template, a local file or a URL, opens it in your editor,
compiles it next to the source and rebuilds it whenever the source is newer
than the binary. Compiler errors are saved to log files you can view with
'cmdload showlogs <id>'.

The registry lives in ~/commands unless --root, $CMDLOAD_ROOT or the root
config key says otherwise.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		initLogging()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Registry directory (overrides $CMDLOAD_ROOT and config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: fmt.Sprintf("%v\nUsage: %s", err, cmd.UseLine())}
	})
	rootCmd.Version = Version
}

// runRoot handles a bare invocation and unknown subcommands.
func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return &usageError{msg: fmt.Sprintf("Unknown command: %s\nRun 'cmdload --help' for usage.", args[0])}
}

// usageError is a user-input mistake. It is reported on stderr and the
// process still exits successfully.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// requireArgs accepts between min and max positional arguments and
// otherwise reports the usage line.
func requireArgs(min, max int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			return &usageError{msg: "Usage: cmdload " + usage}
		}
		return nil
	}
}

func initLogging() {
	cfg := logging.DefaultConfig()
	if verbose {
		cfg.Level = logging.DebugLevel
	} else if gc, err := config.LoadGlobalConfig(); err == nil {
		cfg.Level = logging.ParseLevel(gc.LogLevelName())
	}
	logging.Init(cfg)
}
