package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTargets(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "app", "build.yaml")
	b := filepath.Join(dir, "app", "staging.yaml")
	c := filepath.Join(dir, "versions.star")

	targets, dirs, err := watchTargets([]string{a, b, c})
	require.NoError(t, err)
	assert.Len(t, targets, 3)
	assert.True(t, targets[a])
	assert.Equal(t, []string{filepath.Join(dir, "app"), dir}, dirs)
}

func TestWatchLoop_DebouncesTargetChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "build.yaml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(target, []byte("a: 1\n"), 0600))

	targets, dirs, err := watchTargets([]string{target})
	require.NoError(t, err)

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()
	for _, d := range dirs {
		require.NoError(t, watcher.Add(d))
	}

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, watcher, targets, 200*time.Millisecond, t.Logf, func(name string) {
			changes <- name
		})
	}()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0600))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("a: 2\n"), 0600))
	}

	select {
	case name := <-changes:
		assert.Equal(t, target, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	// The burst collapses into one call.
	select {
	case name := <-changes:
		t.Fatalf("unexpected second change for %s", name)
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}
