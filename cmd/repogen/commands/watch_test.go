package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.json")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(schema, []byte("{}"), 0o644))

	var runs, active, overlap atomic.Int32
	core, logs := observer.New(zap.DebugLevel)
	w := &Watcher{
		Files:    []string{schema},
		Debounce: 50 * time.Millisecond,
		Log:      zap.New(core).Sugar(),
		Run: func(context.Context) error {
			if active.Add(1) > 1 {
				overlap.Add(1)
			}
			defer active.Add(-1)
			if runs.Add(1) == 2 {
				return errors.New("broken schema")
			}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("watching for changes").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "initial run")

	// Files that are not watched are ignored.
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	// A burst of writes triggers a single run; its failure is logged.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(schema, []byte("{ }"), 0o644))
	}
	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
	assert.Equal(t, 1, logs.FilterMessage("regeneration failed").Len())

	// Watching continues after a failed run.
	require.NoError(t, os.WriteFile(schema, []byte("{}"), 0o644))
	require.Eventually(t, func() bool { return runs.Load() == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Zero(t, overlap.Load())
	assert.Equal(t, 2, logs.FilterMessage("regenerated").Len())
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := &Watcher{
		Files: []string{filepath.Join(t.TempDir(), "missing", "schema.json")},
		Log:   zap.NewNop().Sugar(),
		Run:   func(context.Context) error { return nil },
	}
	err := w.Watch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
