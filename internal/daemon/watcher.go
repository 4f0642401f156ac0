package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher watches the image directory and reports changes to its
// listing. Bursts of events are coalesced into one callback per debounce
// window.
type DirWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	// Directory to watch
	dir string

	// Quiet period before a burst of events is reported
	debounce time.Duration

	// Callback for changes
	onChangeCallback func()

	watcher *fsnotify.Watcher

	// Control channels
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewDirWatcher creates a new DirWatcher for dir.
func NewDirWatcher(dir string, debounce time.Duration, logger *slog.Logger) *DirWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &DirWatcher{
		logger:   logger,
		dir:      dir,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetChangeCallback sets the callback to invoke when the directory changes.
func (w *DirWatcher) SetChangeCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChangeCallback = callback
}

// Start begins watching the directory.
func (w *DirWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.watcher = watcher
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.watchLoop(ctx)

	w.logger.Debug("directory watcher started", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// Stop stops watching the directory.
func (w *DirWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	// Wait for goroutine to finish
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.logger.Debug("failed to close watcher", "error", err)
	}
	w.logger.Debug("directory watcher stopped")
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *DirWatcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// watchLoop receives events until stopped.
func (w *DirWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("image directory event", "name", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("directory watcher error", "error", err)

		case <-timerC:
			timerC = nil
			w.mu.RLock()
			callback := w.onChangeCallback
			w.mu.RUnlock()
			if callback != nil {
				callback()
			}
		}
	}
}

// relevant reports whether event can change the image listing.
func relevant(event fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
