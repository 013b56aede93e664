package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler receives the freshly loaded settings after a file change.
type Handler func(Config, error)

// Watcher reloads the config file when it changes on disk. Editors
// often replace files by rename, so the parent directory is watched
// and events are debounced before reloading.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  Handler

	fsw  *fsnotify.Watcher
	done chan struct{}

	mu      sync.Mutex
	pending *time.Timer
}

// Watch starts watching the config file. The handler runs on the
// watcher's goroutine.
func Watch(path string, handler Handler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{
		path:     path,
		debounce: 100 * time.Millisecond,
		handler:  handler,
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.handler(Config{}, err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		w.handler(Load(w.path))
	})
}
