// Package level watches the level file on disk and asks the game to reload
// it when it changes.
package level

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher watches path. The parent directory is watched so that saves
// which replace the file are seen too.
func NewWatcher(path string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("level watcher: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("level watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("level watcher: watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		log:      log,
		watcher:  fw,
	}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Run calls changed once per burst of modifications until ctx is done or
// the watcher is closed. changed runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, changed func()) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("level file event", zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case <-timer.C:
			w.log.Info("level file changed", zap.String("path", w.path))
			changed()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("level watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher. Run returns once it notices.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
