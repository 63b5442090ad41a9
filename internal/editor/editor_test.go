package editor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func tempSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hello.go")
	if err := os.WriteFile(path, []byte("original\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew_DefaultEditor(t *testing.T) {
	l := New("")
	if l.Command() != Default() {
		t.Errorf("Command() = %q, want %q", l.Command(), Default())
	}
	if runtime.GOOS != "windows" && Default() != "vi" {
		t.Errorf("Default() = %q, want vi", Default())
	}
}

func TestEdit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stand-in editors need a POSIX shell")
	}

	tests := []struct {
		name        string
		command     string
		wantErr     bool
		wantContent string
	}{
		{
			name:        "editor modifies file",
			command:     `sh -c 'echo edited >> "$0"'`,
			wantContent: "original\nedited\n",
		},
		{
			name:        "editor exits non-zero",
			command:     `sh -c 'exit 1'`,
			wantContent: "original\n",
		},
		{
			name:    "editor missing",
			command: "/nonexistent/editor-xyz --wait",
			wantErr: true,
		},
		{
			name:    "unparsable command",
			command: `vim "unterminated`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempSource(t)
			var stdout, stderr bytes.Buffer
			l := New(tt.command, WithStreams(strings.NewReader(""), &stdout, &stderr))

			err := l.Edit(context.Background(), path)
			if tt.wantErr {
				if !errors.Is(err, ErrLaunch) {
					t.Fatalf("Edit() error = %v, want ErrLaunch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Edit() error = %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.wantContent {
				t.Errorf("content = %q, want %q", data, tt.wantContent)
			}
		})
	}
}
