package resilience

import "sync"

// BreakerRegistry owns one CircuitBreaker per external service name. It is
// passed by injection rather than held as a process-wide singleton so tests
// can instantiate isolated registries.
type BreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	optFns   []func(o *BreakerOptions)
}

// NewBreakerRegistry constructs an empty registry. The option functions are
// applied to every breaker the registry creates lazily.
func NewBreakerRegistry(optFns ...func(o *BreakerOptions)) *BreakerRegistry {
	return &BreakerRegistry{breakers: make(map[string]*CircuitBreaker), optFns: optFns}
}

// Get returns the breaker for the service name, creating it on first use.
func (r *BreakerRegistry) Get(service string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.breakers[service]
	if !ok {
		cb = NewCircuitBreaker(r.optFns...)
		r.breakers[service] = cb
	}
	return cb
}

// Status returns the snapshot for one service breaker and whether the
// breaker exists.
func (r *BreakerRegistry) Status(service string) (Status, bool) {
	r.mu.Lock()
	cb, ok := r.breakers[service]
	r.mu.Unlock()
	if !ok {
		return Status{}, false
	}
	st := cb.Snapshot()
	st.Service = service
	return st, true
}

// AllStatus returns snapshots for every known breaker keyed by service name.
func (r *BreakerRegistry) AllStatus() map[string]Status {
	r.mu.Lock()
	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	r.mu.Unlock()

	out := make(map[string]Status, len(names))
	for _, name := range names {
		if st, ok := r.Status(name); ok {
			out[name] = st
		}
	}
	return out
}

// Reset forces the named breaker back to CLOSED. It reports whether the
// breaker existed.
func (r *BreakerRegistry) Reset(service string) bool {
	r.mu.Lock()
	cb, ok := r.breakers[service]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cb.Reset()
	return true
}
