// Package watcher turns filesystem changes in the library into rescans.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cdfmlr/crud/log"
	"github.com/fsnotify/fsnotify"
)

var logger = log.ZoneLogger("gigmaster/watcher")

const DefaultDebounce = 250 * time.Millisecond

// Watcher watches a few directories (not recursively) and calls
// OnChange once per batch of events.
//
// Events that arrive within Debounce of each other form one batch.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	OnChange func()

	watcher *fsnotify.Watcher
}

// New starts watching dirs. Call Run to deliver the changes, Close when done.
func New(dirs []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher.New: NewWatcher failed: %w", err)
	}

	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watcher.New: watch %s failed: %w", dir, err)
		}
	}

	logger.WithField("dirs", dirs).WithField("debounce", debounce).Info("watching")

	return &Watcher{
		Dirs:     dirs,
		Debounce: debounce,
		OnChange: onChange,
		watcher:  fw,
	}, nil
}

// relevant drops events that can not change the library:
// hidden files (editor swap files, .DS_Store) and chmod-only events.
func relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

// Run delivers changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			logger.WithField("event", ev.String()).Debug("change")

			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.Debounce)
			pending = true

		case <-timer.C:
			pending = false
			if w.OnChange != nil {
				w.OnChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// e.g. fsnotify.ErrEventOverflow: events were lost, rescan to be safe
			logger.WithError(err).Warn("watcher error")
			if !pending {
				timer.Reset(w.Debounce)
				pending = true
			}
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
