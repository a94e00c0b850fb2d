package workspace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// invalidateDebounce coalesces bursts of file writes (e.g. an editor
// save-as-you-type) into a single reload.
const invalidateDebounce = 500 * time.Millisecond

// Cache holds the last Load of a workspace directory and transparently
// reloads it when fsnotify reports an external edit — an operator
// hand-editing SOUL.md, say — so callers never read stale content without
// paying a filesystem round trip on every request.
type Cache struct {
	dir string

	mu sync.RWMutex
	ws *Workspace

	watcher  *fsnotify.Watcher
	done     chan struct{}
	debounce *time.Timer
	timerMu  sync.Mutex
}

// NewCache loads dir once and starts a best-effort fsnotify watch on it.
// If the watch fails to start, the cache still works — it just never
// invalidates until the next explicit Reload.
func NewCache(dir string) (*Cache, error) {
	c := &Cache{dir: dir, done: make(chan struct{})}
	if err := c.Reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("workspace: fsnotify unavailable, cache will not auto-invalidate", "dir", dir, "error", err)
		return c, nil
	}
	if err := w.Add(dir); err != nil {
		slog.Warn("workspace: failed to watch directory", "dir", dir, "error", err)
		w.Close()
		return c, nil
	}
	c.watcher = w
	go c.run()
	return c, nil
}

// Reload re-reads the workspace directory synchronously.
func (c *Cache) Reload() error {
	ws, err := Load(c.dir)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
	return nil
}

// Get returns the most recently loaded Workspace without touching disk.
func (c *Cache) Get() *Workspace {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ws
}

// Close stops the background watcher.
func (c *Cache) Close() {
	if c.watcher == nil {
		return
	}
	close(c.done)
	c.watcher.Close()
}

func (c *Cache) run() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				c.scheduleReload()
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("workspace: fsnotify error", "dir", c.dir, "error", err)
		}
	}
}

func (c *Cache) scheduleReload() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(invalidateDebounce, func() {
		if err := c.Reload(); err != nil {
			slog.Warn("workspace: reload after external edit failed", "dir", c.dir, "error", err)
		}
	})
}
