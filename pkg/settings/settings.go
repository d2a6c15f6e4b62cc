// Package settings provides a flat key→value store for user preferences that
// change at runtime (UI state, per-backend toggles), persisted as a single
// JSON document.
//
// The repository reads lazily and caches in memory, writes through on Set,
// and can invalidate its cache when the file changes on disk. It is
// constructed once by the composition root and passed to consumers; there is
// no package-level state.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Repository is a lazily-loaded, write-through settings store backed by a
// JSON file of flat key→value pairs.
type Repository struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	cache  map[string]any
	loaded bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewRepository creates a settings repository for the given file path.
// The file does not need to exist yet.
func NewRepository(path string, logger *slog.Logger) *Repository {
	return &Repository{
		path:   path,
		logger: logger,
	}
}

// Load reads the settings file into the in-memory cache. A missing file is
// not an error and yields an empty store; malformed JSON is reported since it
// indicates corruption.
func (r *Repository) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

func (r *Repository) loadLocked() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.cache = map[string]any{}
			r.loaded = true
			return nil
		}
		return fmt.Errorf("reading settings: %w", err)
	}

	cache := map[string]any{}
	if err := json.Unmarshal(data, &cache); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}

	r.cache = cache
	r.loaded = true

	return nil
}

// Save persists the current cache to disk.
func (r *Repository) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked()
}

func (r *Repository) saveLocked() error {
	if r.cache == nil {
		r.cache = map[string]any{}
	}

	data, err := json.MarshalIndent(r.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	return nil
}

// Invalidate drops the in-memory cache so the next read reloads from disk.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = nil
	r.loaded = false
}

// Get returns the value for key, or def if the key is absent. The store is
// loaded lazily on first access; a load failure logs and returns def.
func (r *Repository) Get(key string, def any) any {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		if err := r.loadLocked(); err != nil {
			r.logger.Error("loading settings", "path", r.path, "error", err)
			return def
		}
	}

	v, ok := r.cache[key]
	if !ok {
		return def
	}

	return v
}

// GetString returns the value for key coerced to a string.
func (r *Repository) GetString(key, def string) string {
	if v, ok := r.Get(key, def).(string); ok {
		return v
	}
	return def
}

// GetBool returns the value for key coerced to a bool.
func (r *Repository) GetBool(key string, def bool) bool {
	if v, ok := r.Get(key, def).(bool); ok {
		return v
	}
	return def
}

// GetInt returns the value for key coerced to an int. JSON numbers decode as
// float64, so both are accepted.
func (r *Repository) GetInt(key string, def int) int {
	switch v := r.Get(key, def).(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// Set stores the value for key and writes the whole store through to disk.
func (r *Repository) Set(key string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		if err := r.loadLocked(); err != nil {
			return err
		}
	}

	r.cache[key] = value

	return r.saveLocked()
}

// Watch starts invalidating the cache whenever the settings file changes on
// disk (e.g. edited by another process). Stop with Close.
func (r *Repository) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating settings watcher: %w", err)
	}

	// Watch the directory: editors replace files, which drops a watch on the
	// file itself.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching settings directory: %w", err)
	}

	r.watcher = watcher
	r.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != r.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					r.logger.Debug("settings changed on disk, invalidating cache", "op", event.Op.String())
					r.Invalidate()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.logger.Error("settings watcher error", "error", err)
			case <-r.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the file watcher if one is running.
func (r *Repository) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.done)
	return r.watcher.Close()
}
