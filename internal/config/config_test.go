package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/commands"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"LogsPath", LogsPath, "/test/commands/logs"},
		{"StatePath", StatePath, "/test/commands/.cmdload"},
		{"HistoryPath", HistoryPath, "/test/commands/.cmdload/history.db"},
		{"LockPath", LockPath, "/test/commands/.cmdload/registry.lock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/commands", filepath.Join(home, "commands")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	want := filepath.Join(home, "commands")
	if got := DefaultRoot(); got != want {
		t.Errorf("DefaultRoot() = %q, want %q", got, want)
	}
}
