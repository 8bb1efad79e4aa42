package handoff

import (
	"fmt"
	"sync"

	"github.com/missionai/agrimesh/core"
)

// Registry holds the set of specialist handlers available for handoff,
// keyed by handler name. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]core.Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]core.Handler)}
}

// Register adds a handler under its own name, replacing any previous
// registration with the same name.
func (r *Registry) Register(h core.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
}

// Lookup returns the handler registered under name, or a wrapped
// core.ErrHandlerNotFound when no such handler exists.
func (r *Registry) Lookup(name string) (core.Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrHandlerNotFound, name)
	}
	return h, nil
}

// Names returns the registered handler names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
