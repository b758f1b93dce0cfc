package store

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"loanlens/internal"
)

// DefaultDebounce batches the burst of events a single save produces
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the store when the snapshot file changes. It watches the
// parent directory so atomic replace-by-rename is seen as well.
type Watcher struct {
	mu       sync.Mutex
	store    *Store
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	logger   *internal.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for the snapshot file at path
func NewWatcher(store *Store, path string, debounce time.Duration, logger *internal.Logger) (*Watcher, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		store:    store,
		watcher:  fw,
		target:   target,
		debounce: debounce,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := filepath.Dir(w.target)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.running = true
	w.logger.Info("[Watcher] watching %s for snapshot changes", w.target)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("[Watcher] error closing watcher: %v", err)
	}
	w.logger.Info("[Watcher] stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
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
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("[Watcher] %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("[Watcher] error: %v", err)

		case <-fire:
			fire = nil
			if err := w.store.Load(ctx); err == nil {
				w.logger.Info("[Watcher] snapshot reloaded")
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.target {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
