package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/wallpaperd/internal/images"
	"github.com/jmylchreest/wallpaperd/internal/model"
)

func TestDirWatcher_ReportsNewImage(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan struct{}, 4)
	w := NewDirWatcher(dir, 20*time.Millisecond, discardLogger())
	w.SetChangeCallback(func() { changed <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.png"), []byte("png"), 0644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestDirWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan struct{}, 16)
	w := NewDirWatcher(dir, 200*time.Millisecond, discardLogger())
	w.SetChangeCallback(func() { changed <- struct{}{} })

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for _, name := range []string{"1.png", "2.png", "3.png", "4.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("png"), 0644))
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	assert.Empty(t, changed)
}

func TestDirWatcher_RefreshesState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("a"), 0644))

	s, _ := newTestState(t, filepath.Join(dir, "a.png"), model.ModeLinear)
	s.lister = images.NewDirLister(dir)
	n, err := s.RefreshDirectoryListing(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	refreshed := make(chan int, 4)
	w := NewDirWatcher(dir, 20*time.Millisecond, discardLogger())
	w.SetChangeCallback(func() {
		n, err := s.RefreshDirectoryListing(context.Background())
		if err == nil {
			refreshed <- n
		}
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("b"), 0644))

	select {
	case n := <-refreshed:
		assert.Equal(t, 2, n)
	case <-time.After(2 * time.Second):
		t.Fatal("listing not refreshed")
	}
}

func TestDirWatcher_MissingDirectory(t *testing.T) {
	w := NewDirWatcher(filepath.Join(t.TempDir(), "missing"), 0, discardLogger())
	assert.Error(t, w.Start(context.Background()))
	w.Stop()
}

func TestDirWatcher_RunStopsOnCancel(t *testing.T) {
	w := NewDirWatcher(t.TempDir(), 0, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Remove}, true},
		{"rename", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Rename}, true},
		{"write", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Write}, false},
		{"chmod", fsnotify.Event{Name: "/d/a.png", Op: fsnotify.Chmod}, false},
		{"hidden", fsnotify.Event{Name: "/d/.a.png.part", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
