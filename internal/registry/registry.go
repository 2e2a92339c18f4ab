// SPDX-License-Identifier: MIT
// Package registry maps method identifiers to their constructors. Methods
// are registered explicitly at process start; each factory is called once
// and the resulting instance is validated and kept for the lifetime of the
// registry.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"sigbench/internal/method"
)

// Factory constructs a method. It takes no arguments: the method's identity
// must be fully initialised by the constructor alone.
type Factory func() method.Method

var (
	ErrDuplicateMethod = errors.New("duplicate method id")
	ErrUnknownMethod   = errors.New("unknown method id")
	ErrIDMismatch      = errors.New("method id does not match registration")
	errEmptyID         = errors.New("empty method id")
	errNilFactory      = errors.New("nil factory")
	errNilMethod       = errors.New("factory returned nil method")
)

// Registry holds constructed method singletons keyed by ID. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]method.Method
	order   []string // Registration order.
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{methods: make(map[string]method.Method)}
}

// Register constructs the method built by factory and stores it under id.
// The method must report the same ID and a valid task.
func (r *Registry) Register(id string, factory Factory) error {
	if id == "" {
		return errEmptyID
	}
	if factory == nil {
		return fmt.Errorf("%w: %s", errNilFactory, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMethod, id)
	}

	m := factory()
	if m == nil {
		return fmt.Errorf("%w: %s", errNilMethod, id)
	}
	if m.ID() != id {
		return fmt.Errorf("%w: registered as %q, reports %q", ErrIDMismatch, id, m.ID())
	}
	if !m.Task().Valid() {
		return fmt.Errorf("%w: method %s declares %q", method.ErrInvalidTask, id, m.Task())
	}

	r.methods[id] = m
	r.order = append(r.order, id)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(id string, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		panic("method registry: " + err.Error())
	}
}

// Lookup returns the method registered under id.
func (r *Registry) Lookup(id string) (method.Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.methods[id]
	return m, ok
}

// Get is like Lookup but returns ErrUnknownMethod for missing ids.
func (r *Registry) Get(id string) (method.Method, error) {
	m, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, id)
	}
	return m, nil
}

// All returns every method in registration order.
func (r *Registry) All() []method.Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]method.Method, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.methods[id])
	}
	return out
}

// ByTask returns the methods tagged with task, in registration order.
func (r *Registry) ByTask(task method.Task) []method.Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []method.Method
	for _, id := range r.order {
		if m := r.methods[id]; m.Task() == task {
			out = append(out, m)
		}
	}
	return out
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Len returns the number of registered methods.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
