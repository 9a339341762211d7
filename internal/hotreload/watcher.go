package hotreload

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the plugin table when the capability store changes on
// disk. Bursts of filesystem events (an editor save, a capability being
// persisted file by file) collapse into a single reload via debouncing.
type Watcher struct {
	manager  *Manager
	path     string
	debounce time.Duration
}

// NewWatcher watches path and drives manager. debounce <= 0 defaults to
// 500ms.
func NewWatcher(manager *Manager, path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{manager: manager, path: path, debounce: debounce}
}

// Run blocks until ctx is cancelled, reloading after each settled burst of
// store changes. A failed reload is logged and the previous table stays
// live; watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.path); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New capability directories need their own watch so edits
			// inside them are seen.
			if ev.Op&fsnotify.Create != 0 {
				_ = fw.Add(ev.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.manager.Reload(); err != nil {
				slog.Warn("store changed but reload failed, keeping previous tools", "err", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("store watcher error", "err", err)
		}
	}
}
