// Package watch reloads the dataset when its local source file changes.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher calls reload after the watched file settles. Editors often write a
// file as several events (truncate, write, rename), so events are debounced.
type Watcher struct {
	path     string
	reload   func(context.Context) error
	log      *zap.Logger
	debounce time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	reloads int
}

func New(path string, reload func(context.Context) error, log *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: replacing the file by rename drops a file watch.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		reload:   reload,
		log:      log,
		debounce: 300 * time.Millisecond,
		fsw:      fsw,
	}, nil
}

// Reloads is the number of reloads triggered so far.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Run blocks until ctx is done, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fsw.Close() }()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			w.mu.Lock()
			w.reloads++
			w.mu.Unlock()
			// A failed reload is logged by the dataset, which keeps its old snapshot.
			_ = w.reload(ctx)
		}
	}
}
