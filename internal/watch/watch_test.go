package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/cmdload/internal/lifecycle"
	"github.com/matsen/cmdload/internal/registry"
)

type fakeLoader struct {
	mu      sync.Mutex
	targets []string
	loaded  chan string
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{loaded: make(chan string, 16)}
}

func (l *fakeLoader) Load(ctx context.Context, target string) (*lifecycle.LoadReport, error) {
	l.mu.Lock()
	l.targets = append(l.targets, target)
	l.mu.Unlock()
	l.loaded <- target
	return &lifecycle.LoadReport{Target: target}, nil
}

func (l *fakeLoader) wait(t *testing.T) string {
	t.Helper()
	select {
	case target := <-l.loaded:
		return target
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load")
		return ""
	}
}

func startWatcher(t *testing.T, target string) (*fakeLoader, string) {
	t.Helper()
	root := t.TempDir()
	reg := registry.New(afero.NewOsFs(), root, registry.Layout{SourceExt: "go"})
	loader := newFakeLoader()
	w := New(reg, loader, target, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// The initial load happens after the watch is registered.
	assert.Equal(t, target, loader.wait(t))
	return loader, root
}

func TestWatchLoadsChangedSource(t *testing.T) {
	loader, root := startWatcher(t, lifecycle.AllTarget)

	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.go"), []byte("package main"), 0644))
	assert.Equal(t, "hello", loader.wait(t))
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	loader, root := startWatcher(t, "hello")

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.go"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.go"), []byte("x"), 0644))

	assert.Equal(t, "hello", loader.wait(t))

	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.NotContains(t, loader.targets, "other")
	assert.NotContains(t, loader.targets, "notes")
}

func TestWatchDebouncesBursts(t *testing.T) {
	loader, root := startWatcher(t, lifecycle.AllTarget)

	path := filepath.Join(root, "hello.go")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("package main"), 0644))
	}
	assert.Equal(t, "hello", loader.wait(t))

	select {
	case target := <-loader.loaded:
		t.Fatalf("unexpected second load of %s", target)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCommandName(t *testing.T) {
	reg := registry.New(afero.NewMemMapFs(), "/cmds", registry.Layout{SourceExt: "go"})

	tests := []struct {
		target string
		path   string
		want   string
		ok     bool
	}{
		{lifecycle.AllTarget, "/cmds/hello.go", "hello", true},
		{lifecycle.AllTarget, "/cmds/hello.go~", "", false},
		{lifecycle.AllTarget, "/cmds/logs/x.go", "", false},
		{lifecycle.AllTarget, "/cmds/.hidden.go", "", false},
		{lifecycle.AllTarget, "/cmds/hello", "", false},
		{"hello", "/cmds/hello.go", "hello", true},
		{"hello", "/cmds/world.go", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.target+" "+tt.path, func(t *testing.T) {
			w := New(reg, newFakeLoader(), tt.target)
			got, ok := w.commandName(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunRejectsInvalidTarget(t *testing.T) {
	reg := registry.New(afero.NewOsFs(), t.TempDir(), registry.Layout{SourceExt: "go"})
	w := New(reg, newFakeLoader(), "a/b")
	assert.ErrorIs(t, w.Run(context.Background()), registry.ErrInvalidName)
}
