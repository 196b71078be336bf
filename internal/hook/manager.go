package hook

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrHookNotFound is returned by Get for an unknown name.
var ErrHookNotFound = errors.New("hook not found")

// Manager discovers hooks in a directory.
type Manager struct {
	dir string
	log *logrus.Entry

	mu    sync.RWMutex
	hooks map[string]*Hook
}

// NewManager creates a Manager for dir. Call Discover to load hooks.
func NewManager(dir string, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		dir:   dir,
		log:   log.WithField("dir", dir),
		hooks: make(map[string]*Hook),
	}
}

// Discover rescans the directory. A missing directory means no hooks.
// Subdirectories without a readable manifest are skipped with a warning.
func (m *Manager) Discover() error {
	hooks := make(map[string]*Hook)

	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		m.swap(hooks)
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(m.dir, entry.Name())
		data, err := os.ReadFile(filepath.Join(path, ManifestFile))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		log := m.log.WithField("hook", entry.Name())
		if err != nil {
			log.WithError(err).Warn("Skipping unreadable hook manifest")
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			log.WithError(err).Warn("Skipping invalid hook manifest")
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			log.Warn("Skipping hook manifest without name or executable")
			continue
		}

		hooks[manifest.Name] = &Hook{
			Manifest:   manifest,
			Path:       path,
			Executable: filepath.Join(path, manifest.Executable),
		}
	}

	m.swap(hooks)
	m.log.WithField("count", len(hooks)).Info("Hooks discovered")
	return nil
}

func (m *Manager) swap(hooks map[string]*Hook) {
	m.mu.Lock()
	m.hooks = hooks
	m.mu.Unlock()
}

// Get returns a hook by name.
func (m *Manager) Get(name string) (*Hook, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.hooks[name]
	if !ok {
		return nil, ErrHookNotFound
	}
	return h, nil
}

// List returns every hook sorted by name.
func (m *Manager) List() []*Hook {
	m.mu.RLock()
	hooks := make([]*Hook, 0, len(m.hooks))
	for _, h := range m.hooks {
		hooks = append(hooks, h)
	}
	m.mu.RUnlock()

	sort.Slice(hooks, func(i, j int) bool {
		return hooks[i].Manifest.Name < hooks[j].Manifest.Name
	})
	return hooks
}

// Dir returns the directory being scanned.
func (m *Manager) Dir() string {
	return m.dir
}
