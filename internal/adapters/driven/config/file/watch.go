package file

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docquery/internal/logger"
)

// debounceDelay coalesces the burst of events editors emit per save.
const debounceDelay = 200 * time.Millisecond

// Watcher reloads a ConfigStore when its file changes on disk and
// notifies a callback, so long-running sessions pick up edits to
// config.toml without a restart.
type Watcher struct {
	store    *ConfigStore
	watcher  *fsnotify.Watcher
	onReload func()
	log      *logger.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the store's config file. onReload is
// called after each successful reload; it may be nil. A nil log falls
// back to a no-op logger.
func NewWatcher(store *ConfigStore, onReload func(), log *logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		store:    store,
		watcher:  fw,
		onReload: onReload,
		log:      log,
		stop:     make(chan struct{}),
	}, nil
}

// Start begins watching and returns immediately. Events are processed in
// a background goroutine until Stop is called or ctx ends.
//
// The parent directory is watched rather than the file itself: most
// editors replace the file on save, which would invalidate a file watch.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.store.Path())); err != nil {
		return err
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases resources. Safe to call more than
// once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		_ = w.watcher.Close()
	})
}

// processEvents debounces filesystem events and reloads the store.
func (w *Watcher) processEvents(ctx context.Context) {
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.store.Path() {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
				fire = debounce.C
			} else {
				debounce.Reset(debounceDelay)
			}

		case <-fire:
			debounce = nil
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", "error", err)
		}
	}
}

// reload re-reads the config file and notifies the callback.
func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		w.log.Warn("config reload failed", "path", w.store.Path(), "error", err)
		return
	}
	w.log.Info("config reloaded", "path", w.store.Path())
	if w.onReload != nil {
		w.onReload()
	}
}
