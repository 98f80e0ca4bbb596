package workspace

import (
	"path/filepath"
	"sort"
	"sync"
)

// Listener is notified about module root changes. Calls happen outside the
// set's lock and may arrive from any goroutine.
type Listener interface {
	ModuleAdded(path string)
	ModuleRemoved(path string)
}

// Workspace exposes the current module roots.
type Workspace interface {
	ModuleRoots() []string
}

// Modules is a thread-safe set of module roots.
type Modules struct {
	mu        sync.RWMutex
	roots     map[string]struct{}
	listeners map[int]Listener
	nextID    int
}

// NewModules creates a set holding roots. No listener is notified for them.
func NewModules(roots ...string) *Modules {
	m := &Modules{
		roots:     make(map[string]struct{}, len(roots)),
		listeners: make(map[int]Listener),
	}
	for _, root := range roots {
		m.roots[filepath.Clean(root)] = struct{}{}
	}
	return m
}

// Subscribe registers l and returns a function that removes it again.
func (m *Modules) Subscribe(l Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Add inserts path and notifies listeners when it was not present.
func (m *Modules) Add(path string) bool {
	path = filepath.Clean(path)

	m.mu.Lock()
	if _, exists := m.roots[path]; exists {
		m.mu.Unlock()
		return false
	}
	m.roots[path] = struct{}{}
	listeners := m.listenersLocked()
	m.mu.Unlock()

	for _, l := range listeners {
		l.ModuleAdded(path)
	}
	return true
}

// Remove deletes path and notifies listeners when it was present.
func (m *Modules) Remove(path string) bool {
	path = filepath.Clean(path)

	m.mu.Lock()
	if _, exists := m.roots[path]; !exists {
		m.mu.Unlock()
		return false
	}
	delete(m.roots, path)
	listeners := m.listenersLocked()
	m.mu.Unlock()

	for _, l := range listeners {
		l.ModuleRemoved(path)
	}
	return true
}

// Contains reports whether path is a module root.
func (m *Modules) Contains(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.roots[filepath.Clean(path)]
	return ok
}

// ModuleRoots implements Workspace. Roots are returned sorted.
func (m *Modules) ModuleRoots() []string {
	m.mu.RLock()
	roots := make([]string, 0, len(m.roots))
	for root := range m.roots {
		roots = append(roots, root)
	}
	m.mu.RUnlock()

	sort.Strings(roots)
	return roots
}

func (m *Modules) listenersLocked() []Listener {
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.listeners[id])
	}
	return out
}
