package main

import (
	"errors"

	"github.com/spf13/afero"

	"github.com/matsen/cmdload/internal/compiler"
	"github.com/matsen/cmdload/internal/config"
	"github.com/matsen/cmdload/internal/diaglog"
	"github.com/matsen/cmdload/internal/editor"
	"github.com/matsen/cmdload/internal/fetch"
	"github.com/matsen/cmdload/internal/history"
	"github.com/matsen/cmdload/internal/lifecycle"
	"github.com/matsen/cmdload/internal/lock"
	"github.com/matsen/cmdload/internal/logging"
	"github.com/matsen/cmdload/internal/registry"
)

// mustLoadGlobalConfig loads the global config, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// registryRoot applies --root on top of the configured root.
func registryRoot(cfg *config.GlobalConfig) string {
	if rootFlag != "" {
		return config.ExpandPath(rootFlag)
	}
	return cfg.RegistryRoot()
}

// mustResolveToolchain returns the configured toolchain with any command or
// extension overrides applied, exits on error.
func mustResolveToolchain(cfg *config.GlobalConfig) compiler.Toolchain {
	tc, err := compiler.Lookup(cfg.ToolchainName())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if cmd := cfg.CompilerCommand(); cmd != "" {
		tc.Command = cmd
	}
	if cfg.SourceExt != "" {
		tc.SourceExt = cfg.SourceExt
	}
	if cfg.BinaryExt != "" {
		tc.BinaryExt = cfg.BinaryExt
	}
	return tc
}

// openRegistry returns the registry on the real filesystem.
func openRegistry(cfg *config.GlobalConfig, tc compiler.Toolchain) *registry.Registry {
	layout := registry.Layout{SourceExt: tc.SourceExt, BinaryExt: tc.BinaryExt}
	return registry.New(afero.NewOsFs(), registryRoot(cfg), layout)
}

// openHistory opens the build history. History is informational, so a
// database that cannot be opened only produces a warning.
func openHistory(root string) *history.DB {
	db, err := history.Open(config.HistoryPath(root))
	if err != nil {
		logging.Warn().Err(err).Msg("build history disabled")
		return nil
	}
	return db
}

// mustOpenHistory opens the build history, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenHistory(root string) *history.DB {
	db, err := history.Open(config.HistoryPath(root))
	if err != nil {
		exitWithError(ExitError, "opening history: %v", err)
	}
	return db
}

// mustNewManager wires a lifecycle manager from the global config.
// The returned func releases the history database.
func mustNewManager() (*lifecycle.Manager, func()) {
	cfg := mustLoadGlobalConfig()
	tc := mustResolveToolchain(cfg)
	reg := openRegistry(cfg, tc)

	opts := []lifecycle.Option{
		lifecycle.WithEditor(editor.New(cfg.EditorCommand())),
		lifecycle.WithFetcher(fetch.New()),
		lifecycle.WithTemplate(tc.Template),
	}
	if cfg.LockEnabled() {
		opts = append(opts, lifecycle.WithLock(lock.New(config.LockPath(reg.Root()))))
	}

	cleanup := func() {}
	if db := openHistory(reg.Root()); db != nil {
		opts = append(opts, lifecycle.WithHistory(db))
		cleanup = func() {
			if err := db.Close(); err != nil {
				logging.Warn().Err(err).Msg("closing history")
			}
		}
	}

	logging.Debug().
		Str("root", reg.Root()).
		Str("toolchain", tc.Name).
		Str("compiler", tc.Command).
		Msg("manager ready")

	return lifecycle.New(reg, compiler.NewInvoker(tc.Command), opts...), cleanup
}

// exitCodeFor maps operation errors to exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrCommandNotFound), errors.Is(err, diaglog.ErrLogNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}
