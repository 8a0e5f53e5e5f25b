package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vireo-engine/rendercore/internal/corelog"
)

// Watcher re-reads a config file on write and republishes the resulting
// EngineConfig on Changed, mirroring the teacher's AssetManager.start
// select loop (engine/assets/assets.go) but narrowed to a single file
// instead of a recursively-watched asset tree.
type Watcher struct {
	path string

	mu      sync.RWMutex
	current EngineConfig

	fsw     *fsnotify.Watcher
	Changed chan EngineConfig
	done    chan struct{}
}

// NewWatcher loads path once, starts watching it, and returns a Watcher
// whose Changed channel emits a freshly reloaded EngineConfig every time
// the file is written. Callers that don't care about hot-reload can
// simply ignore Changed and call Current().
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		// A config file that doesn't exist yet is not fatal: defaults
		// are already loaded into current, and editing the path into
		// existence later is not supported by this narrow watcher.
		corelog.LogWarn("config watch disabled for %s: %v", path, err)
	}

	w := &Watcher{
		path:    path,
		current: cfg,
		fsw:     fsw,
		Changed: make(chan EngineConfig, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				corelog.LogError("config reload of %s failed: %v", w.path, err)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()

			select {
			case w.Changed <- cfg:
			default:
				// Drain the stale pending value so the latest config wins;
				// a reader that's behind only ever needs the most recent one.
				select {
				case <-w.Changed:
				default:
				}
				w.Changed <- cfg
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			corelog.LogError("config watcher error: %v", err)

		case <-w.done:
			w.fsw.Close()
			close(w.Changed)
			return
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() EngineConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops the underlying fsnotify watcher and the run goroutine.
func (w *Watcher) Close() {
	close(w.done)
}
