// Package pluginstore persists plugin configuration as one JSON file per
// plugin under a directory, and watches that directory for out-of-band
// edits so a running gateway can pick up changes without a restart.
package pluginstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/zalogw/gateway/internal/bot"
)

// Plugin is one persisted plugin's configuration. Name is derived from
// the file stem on load, never stored in the file body itself.
type Plugin struct {
	Name     string   `json:"name"`
	Disabled bool     `json:"disabled"`
	URLs     []string `json:"urls"`
}

type fileBody struct {
	Disabled bool     `json:"disabled"`
	URLs     []string `json:"urls"`
}

// Store reads and writes plugins/<name>.json files under Dir.
type Store struct {
	dir string
}

// Open ensures dir exists (creating it lazily) and returns a Store over
// it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pluginstore: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes or overwrites a plugin's configuration.
func (s *Store) Save(name string, disabled bool, urls []string) error {
	body, err := json.MarshalIndent(fileBody{Disabled: disabled, URLs: urls}, "", "  ")
	if err != nil {
		return fmt.Errorf("pluginstore: marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), body, 0o644); err != nil {
		return fmt.Errorf("pluginstore: write %s: %w", name, err)
	}
	return nil
}

// Delete removes a plugin's configuration file. Deleting a name that
// does not exist is not an error.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pluginstore: delete %s: %w", name, err)
	}
	return nil
}

// List loads every plugin currently on disk.
func (s *Store) List() ([]Plugin, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("pluginstore: read %s: %w", s.dir, err)
	}

	var out []Plugin
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			slog.Warn("pluginstore: skipping unreadable plugin file", "file", e.Name(), "error", err)
			continue
		}
		var body fileBody
		if err := json.Unmarshal(data, &body); err != nil {
			slog.Warn("pluginstore: skipping malformed plugin file", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, Plugin{Name: name, Disabled: body.Disabled, URLs: body.URLs})
	}
	return out, nil
}

// Load is the session manager's PluginLoader: every enabled plugin,
// translated to bot.PluginSpec with its urls shuffled (spec: "tried in
// shuffled order"), deduplicated by name. The uin argument is accepted
// but unused — plugin configuration in this gateway is process-wide, not
// per-bot.
func (s *Store) Load(uin string) ([]bot.PluginSpec, error) {
	plugins, err := s.List()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(plugins))
	out := make([]bot.PluginSpec, 0, len(plugins))
	for _, p := range plugins {
		if p.Disabled || seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		urls := append([]string(nil), p.URLs...)
		rand.Shuffle(len(urls), func(i, j int) { urls[i], urls[j] = urls[j], urls[i] })
		out = append(out, bot.PluginSpec{Name: p.Name, URLs: urls})
	}
	return out, nil
}

// Watch starts a goroutine that calls onChange whenever a plugin file is
// created, written, removed, or renamed. The returned stop func closes
// the underlying watcher; calling it more than once is safe.
func (s *Store) Watch(onChange func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pluginstore: new watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("pluginstore: watch %s: %w", s.dir, err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if strings.HasSuffix(ev.Name, ".json") {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("pluginstore: watcher error", "error", err)
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { w.Close() }) }, nil
}
