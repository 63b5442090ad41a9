package lock

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cmdload", "registry.lock")
	l := New(path)

	require.NoError(t, l.Lock())
	assert.FileExists(t, path)
	require.NoError(t, l.Unlock())

	// Unlock without a held lock is harmless.
	assert.NoError(t, l.Unlock())
}

func TestLockIsExclusive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("flock is not available on Windows")
	}

	path := filepath.Join(t.TempDir(), "registry.lock")
	first := New(path)
	second := New(path)

	require.NoError(t, first.Lock())

	acquired := make(chan struct{})
	go func() {
		if err := second.Lock(); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, first.Unlock())

	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal("second lock not acquired after first was released")
	}
	assert.NoError(t, second.Unlock())
}

func TestLockReacquire(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "registry.lock"))
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Lock())
		require.NoError(t, l.Unlock())
	}
}
