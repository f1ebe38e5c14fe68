package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("retention.days", 3))

	var reloads atomic.Int32
	watcher, err := NewWatcher(store, func() { reloads.Add(1) }, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	// Simulate an external edit.
	second, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, second.Set("retention.days", 7))

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1 && store.GetInt("retention.days") == 7
	}, 2*time.Second, 20*time.Millisecond, "expected the store to pick up the external edit")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	var reloads atomic.Int32
	watcher, err := NewWatcher(store, func() { reloads.Add(1) }, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("unrelated"), 0600))

	// Give the debounce window time to fire if it was (wrongly) armed.
	time.Sleep(400 * time.Millisecond)
	require.Zero(t, reloads.Load())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	watcher, err := NewWatcher(store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.Start(context.Background()))

	watcher.Stop()
	watcher.Stop()
}
