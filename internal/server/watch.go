package server

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads the catalog when the database file changes on disk, so edits
// made by another songbook process show up without restarting the server.
type Watcher struct {
	path     string
	reload   func() error
	logger   *log.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher returns a watcher for path that calls reload after writes settle.
// A zero debounce uses 200ms.
func NewWatcher(path string, debounce time.Duration, reload func() error, logger *log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{path: path, reload: reload, logger: logger, debounce: debounce}
}

// Run watches the directory holding the database until ctx is cancelled.
// SQLite journal files (-wal, -journal) count as changes to the database.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debug("watching database", "path", w.path)

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if err := w.reload(); err != nil {
			w.logger.Error("catalog reload failed", "error", err)
			return
		}
		w.logger.Info("catalog reloaded", "path", w.path)
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
