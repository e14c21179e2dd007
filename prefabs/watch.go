// Package prefabs loads the player and level YAML and the tengo input
// scripts, embedded with on-disk overrides, and watches them for hot reload
// so a running game can rebuild the player, the level or its input script.
package prefabs

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce is how long a file must stay quiet before its change
// is reported.
const DefaultReloadDebounce = 100 * time.Millisecond

// Watcher reports reloadable files that changed on disk: the player and
// level prefabs and input scripts. Events fire once a file has been quiet for
// the debounce window, so an editor's truncate-then-write burst produces a
// single event carrying the final contents.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	Events chan string
	Errors chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches dirs. A non-positive debounce uses
// DefaultReloadDebounce.
func NewWatcher(debounce time.Duration, dirs ...string) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultReloadDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher:  w,
		debounce: debounce,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !IsReloadable(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)
		case <-timer.C:
			if !w.flush(pending) {
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// flush sends every pending path in name order. It returns false if the
// watcher closed while sending.
func (w *Watcher) flush(pending map[string]bool) bool {
	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
		delete(pending, name)
	}
	sort.Strings(names)
	for _, name := range names {
		select {
		case w.Events <- name:
		case <-w.closeCh:
			return false
		}
	}
	return true
}

// IsReloadable reports whether a change to path can be applied to a running
// game.
func IsReloadable(path string) bool {
	base := filepath.Base(path)
	if base == PlayerPrefab || base == LevelPrefab {
		return true
	}
	return strings.EqualFold(filepath.Ext(base), ".tengo")
}
