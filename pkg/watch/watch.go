// Package watch re-runs translations when source files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/rjeczalik/notify"

	"bf2py/pkg/utils"
)

// DefaultDelay is how long the watcher waits for a burst of events to settle.
const DefaultDelay = 100 * time.Millisecond

// Watcher reports changes to a fixed set of files. Directories are watched
// rather than files so that editors which replace a file on save are seen.
type Watcher struct {
	events chan notify.EventInfo
	files  map[string]string // absolute path -> path as given
	delay  time.Duration
	log    logr.Logger
}

func newWatcher(delay time.Duration, log logr.Logger) *Watcher {
	return &Watcher{
		events: make(chan notify.EventInfo, 64),
		files:  make(map[string]string),
		delay:  delay,
		log:    log,
	}
}

// New watches paths. Close must be called to release the watches.
func New(paths []string, delay time.Duration, log logr.Logger) (*Watcher, error) {
	w := newWatcher(delay, log)
	dirs := make(map[string]bool)
	for _, p := range paths {
		full, dir, err := utils.GetPathInfo(p)
		if err != nil {
			return nil, err
		}
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			dir = resolved
			full = filepath.Join(dir, filepath.Base(full))
		}
		w.files[full] = p
		dirs[dir] = true
	}
	for dir := range dirs {
		if err := notify.Watch(dir, w.events, notify.Create, notify.Write, notify.Rename); err != nil {
			notify.Stop(w.events)
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		w.log.V(1).Info("watching", "dir", dir)
	}
	return w, nil
}

// Close stops all watches.
func (w *Watcher) Close() {
	notify.Stop(w.events)
}

// Run calls fn with the path (as given to New) of every changed file until ctx
// is done. Bursts of events within the delay are reported once per file, in
// sorted order.
func (w *Watcher) Run(ctx context.Context, fn func(path string)) error {
	pending := make(map[string]bool)
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-w.events:
			path, ok := w.files[ev.Path()]
			if !ok {
				continue
			}
			w.log.V(1).Info("changed", "path", path, "event", ev.Event().String())
			pending[path] = true
			fire = time.After(w.delay)
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			for _, p := range changed {
				delete(pending, p)
				fn(p)
			}
		}
	}
}
