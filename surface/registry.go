// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"slices"
	"sync"
)

// Priorities of the built-in backends. The gg surface is preferred; the
// vector surface is the fallback for workloads that draw with x/image/vector.
const (
	PriorityGG     = 50
	PriorityVector = 10
)

// SurfaceFactory acquires the rendering context of one run. It is called
// once per run with the run's size and context options.
type SurfaceFactory func(opts Options) (Surface, error)

// RegistryEntry describes a backend a run can acquire its surface from.
type RegistryEntry struct {
	Name string

	// Priority orders backends when a run does not name one; higher wins.
	Priority int

	Factory SurfaceFactory

	// Available reports whether runs on this machine can use the backend.
	// The built-in backends are always available.
	Available func() bool
}

// Registry maps backend names, as written in suite files and the --backend
// flag, to surface factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]RegistryEntry
}

// backends holds "gg" and "vector" plus anything registered later.
var backends = NewRegistry()

// NewRegistry creates an empty registry. Runs use the package registry
// through FactoryByName; separate registries are for tests.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]RegistryEntry)}
}

// Register adds a backend to the package registry. A nil available means
// always available; registering an existing name replaces it.
func Register(name string, priority int, factory SurfaceFactory, available func() bool) {
	backends.Register(name, priority, factory, available)
}

// List returns every backend name, preferred first.
func List() []string { return backends.List() }

// Available returns the names of the usable backends, preferred first.
func Available() []string { return backends.Available() }

// Backend returns the entry registered under name.
func Backend(name string) (RegistryEntry, bool) { return backends.Backend(name) }

// FactoryByName returns the factory runs use to acquire their surface from
// the package registry. An empty name picks the preferred usable backend,
// which is "gg" unless something with a higher priority was registered.
func FactoryByName(name string) SurfaceFactory {
	return backends.FactoryByName(name)
}

// Register adds or replaces a backend.
func (r *Registry) Register(name string, priority int, factory SurfaceFactory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// List returns every backend name, preferred first.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered(false)
}

// Available returns the names of the usable backends, preferred first.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered(true)
}

// Backend returns a copy of the entry registered under name.
func (r *Registry) Backend(name string) (RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// NewSurface acquires a surface from the preferred usable backend. When its
// factory fails, the next backend is tried; the last failure is returned.
func (r *Registry) NewSurface(opts Options) (Surface, error) {
	names := r.Available()
	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}
	var lastErr error
	for _, name := range names {
		s, err := r.NewSurfaceByName(name, opts)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// NewSurfaceByName acquires a surface from the named backend only.
func (r *Registry) NewSurfaceByName(name string, opts Options) (Surface, error) {
	e, ok := r.Backend(name)
	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}
	if !e.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}
	return e.Factory(opts)
}

// FactoryByName binds a run to the named backend of this registry. An empty
// name picks the preferred usable backend at acquisition time.
func (r *Registry) FactoryByName(name string) SurfaceFactory {
	if name == "" {
		return r.NewSurface
	}
	return func(opts Options) (Surface, error) {
		return r.NewSurfaceByName(name, opts)
	}
}

// ordered sorts by priority, then name. Callers hold r.mu.
func (r *Registry) ordered(onlyAvailable bool) []string {
	entries := make([]RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b RegistryEntry) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// ErrNoBackendAvailable is returned when a run asks for the preferred
// backend and none is usable.
var ErrNoBackendAvailable = errors.New("surface: no backend available")

// BackendNotFoundError is returned for a backend name that was never
// registered, typically a typo in a suite file or --backend.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError is returned for a registered backend that cannot
// be used on this machine.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}

func init() {
	Register("gg", PriorityGG, func(opts Options) (Surface, error) {
		s, err := NewGGSurface(opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, nil)
	Register("vector", PriorityVector, func(opts Options) (Surface, error) {
		s, err := NewVectorSurface(opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, nil)
}
