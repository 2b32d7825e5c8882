// Package classutil provides named factories and reflective access to
// struct properties and methods.
package classutil

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps case-insensitive names to factories producing T.
// It is safe for concurrent use.
type Registry[T any] struct {
	mu        sync.RWMutex
	kind      string
	factories map[string]entry[T]
}

type entry[T any] struct {
	name    string
	factory func() T
}

// NewRegistry creates an empty registry. kind names what the registry
// holds and appears in error messages.
func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]entry[T]),
	}
}

// Register adds or replaces the factory for name.
func (r *Registry[T]) Register(name string, factory func() T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = entry[T]{name: name, factory: factory}
}

// Get returns the factory registered under name.
func (r *Registry[T]) Get(name string) (func() T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.factories[strings.ToLower(name)]
	return e.factory, ok
}

// New creates an instance from the factory registered under name.
func (r *Registry[T]) New(name string) (T, error) {
	factory, ok := r.Get(name)
	if !ok {
		var zero T
		return zero, &UnknownNameError{
			Kind:      r.kind,
			Name:      name,
			Available: r.Names(),
		}
	}
	return factory(), nil
}

// Names returns the registered names as given to Register (sorted).
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for _, e := range r.factories {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// UnknownNameError is returned when New is called with an unregistered name.
type UnknownNameError struct {
	Kind      string
	Name      string
	Available []string
}

func (e *UnknownNameError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "name"
	}
	return fmt.Sprintf("unknown %s %q\nAvailable: %v", kind, e.Name, e.Available)
}
