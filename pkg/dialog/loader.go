package dialog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader loads and optionally hot-reloads flow definitions from YAML files,
// layered over a set of default flows. A YAML flow with the same name as a
// default replaces it; defaults keep their original priority position.
type Loader struct {
	dir      string
	defaults []*Flow

	mu       sync.RWMutex
	registry *Registry
}

// NewLoader creates a flow loader for the given directory. Until LoadAll
// succeeds, lookups are served from the defaults alone.
func NewLoader(dir string, defaults ...*Flow) (*Loader, error) {
	reg, err := NewRegistry(defaults...)
	if err != nil {
		return nil, err
	}
	return &Loader{dir: dir, defaults: defaults, registry: reg}, nil
}

// LoadAll reads all .yaml and .yml files from the configured directory and
// rebuilds the registry. A missing directory is not an error: the defaults
// stay in effect.
func (l *Loader) LoadAll() (*Registry, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return l.Registry(), nil
		}
		return nil, fmt.Errorf("read flow dir %q: %w", l.dir, err)
	}

	loaded := make(map[string]*Flow)
	var fileOrder []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		f, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", path, err)
		}
		if _, dup := loaded[f.Name]; !dup {
			fileOrder = append(fileOrder, f.Name)
		}
		loaded[f.Name] = f
	}

	// Defaults first, overridden in place; new flows append in file order.
	merged := make([]*Flow, 0, len(l.defaults)+len(loaded))
	for _, d := range l.defaults {
		if override, ok := loaded[d.Name]; ok {
			merged = append(merged, override)
			delete(loaded, d.Name)
			continue
		}
		merged = append(merged, d)
	}
	for _, name := range fileOrder {
		if f, ok := loaded[name]; ok {
			merged = append(merged, f)
		}
	}

	reg, err := NewRegistry(merged...)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.registry = reg
	l.mu.Unlock()

	return reg, nil
}

// Registry returns the currently active registry.
func (l *Loader) Registry() *Registry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.registry
}

// Get returns a flow by name from the active registry.
func (l *Loader) Get(name string) (*Flow, bool) {
	return l.Registry().Get(name)
}

// MatchIntent resolves an utterance against the active registry.
func (l *Loader) MatchIntent(utterance string) (*Flow, bool) {
	return l.Registry().MatchIntent(utterance)
}

// All returns the active flows in priority order.
func (l *Loader) All() []*Flow {
	return l.Registry().All()
}

func (l *Loader) loadFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f Flow
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if f.Name == "" {
		f.Name = flowNameForFile(filepath.Base(path))
	}

	if err := ValidateFlow(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func flowNameForFile(base string) string {
	return base[:len(base)-len(filepath.Ext(base))]
}

// WatchAndReload watches the flow directory and reloads on changes.
// This blocks until the done channel is closed.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", l.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					l.LoadAll()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// Compile-time checks that both flow providers satisfy FlowSource.
var (
	_ FlowSource = (*Registry)(nil)
	_ FlowSource = (*Loader)(nil)
)
