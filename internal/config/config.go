// Package config handles registry layout and global configuration.
package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultRootDir is the registry directory created under the home directory.
	DefaultRootDir = "commands"
	LogsDir        = "logs"
	StateDir       = ".cmdload"
	HistoryFile    = "history.db"
	LockFile       = "registry.lock"
)

// LogsPath returns the path to the diagnostics log directory from a registry root.
func LogsPath(root string) string {
	return filepath.Join(root, LogsDir)
}

// StatePath returns the path to the .cmdload state directory from a registry root.
func StatePath(root string) string {
	return filepath.Join(root, StateDir)
}

// HistoryPath returns the path to history.db from a registry root.
func HistoryPath(root string) string {
	return filepath.Join(root, StateDir, HistoryFile)
}

// LockPath returns the path to the registry lock file from a registry root.
func LockPath(root string) string {
	return filepath.Join(root, StateDir, LockFile)
}

// DefaultRoot returns ~/commands, or a relative "commands" if the home
// directory cannot be determined.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultRootDir
	}
	return filepath.Join(home, DefaultRootDir)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
