package resilience

import (
	"sync"
	"time"
)

// State identifies the circuit breaker state.
type State string

const (
	// StateClosed lets calls pass through.
	StateClosed State = "CLOSED"
	// StateOpen rejects calls immediately without invoking the function.
	StateOpen State = "OPEN"
	// StateHalfOpen admits exactly one trial call to probe recovery.
	StateHalfOpen State = "HALF_OPEN"
)

// DefaultFailureThreshold is the number of consecutive failures that opens a
// breaker.
const DefaultFailureThreshold = 5

// DefaultOpenTimeout is how long an open breaker waits before admitting a
// recovery trial.
const DefaultOpenTimeout = 60 * time.Second

// BreakerOptions configure a CircuitBreaker.
type BreakerOptions struct {
	FailureThreshold int
	OpenTimeout      time.Duration

	// Clock overrides time.Now for deterministic tests.
	Clock func() time.Time
}

// CircuitBreaker guards calls to one external service. State transitions are
// deterministic functions of call outcomes and elapsed time only, and are
// serialized by an internal mutex. At most one HALF_OPEN trial call is in
// flight at a time.
type CircuitBreaker struct {
	mu            sync.Mutex
	state         State
	failureCount  int
	lastFailureAt time.Time
	trialInFlight bool

	failureThreshold int
	openTimeout      time.Duration
	clock            func() time.Time
}

// NewCircuitBreaker constructs a closed breaker with the given options.
func NewCircuitBreaker(optFns ...func(o *BreakerOptions)) *CircuitBreaker {
	opts := BreakerOptions{
		FailureThreshold: DefaultFailureThreshold,
		OpenTimeout:      DefaultOpenTimeout,
		Clock:            time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: opts.FailureThreshold,
		openTimeout:      opts.OpenTimeout,
		clock:            opts.Clock,
	}
}

// Execute runs fn under breaker protection. When the breaker is open and the
// open timeout has not elapsed, ErrCircuitOpen is returned and fn is not
// invoked. When the timeout has elapsed the breaker moves to HALF_OPEN and fn
// runs as the single admitted trial; concurrent callers are rejected until
// the trial completes.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

// admit decides whether a call may proceed, performing the OPEN→HALF_OPEN
// transition when the cooldown has elapsed.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.clock().Sub(cb.lastFailureAt) < cb.openTimeout {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.trialInFlight = true
		return nil
	case StateHalfOpen:
		if cb.trialInFlight {
			return ErrCircuitOpen
		}
		cb.trialInFlight = true
		return nil
	default:
		return nil
	}
}

// record applies the outcome of an admitted call.
func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	wasTrial := cb.state == StateHalfOpen
	cb.trialInFlight = false

	if err == nil {
		if wasTrial {
			cb.state = StateClosed
		}
		cb.failureCount = 0
		return
	}

	cb.failureCount++
	cb.lastFailureAt = cb.clock()

	// A failed HALF_OPEN trial re-opens the circuit regardless of the
	// failure count; in CLOSED the threshold must be reached.
	if wasTrial || cb.failureCount >= cb.failureThreshold {
		cb.state = StateOpen
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker back to CLOSED with a zero failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.lastFailureAt = time.Time{}
	cb.trialInFlight = false
}

// Status is a point-in-time snapshot of a breaker's observable state.
type Status struct {
	Service          string    `json:"service"`
	State            State     `json:"state"`
	FailureCount     int       `json:"failure_count"`
	LastFailureAt    time.Time `json:"last_failure_at,omitzero"`
	FailureThreshold int       `json:"failure_threshold"`
	OpenTimeout      string    `json:"open_timeout"`
}

// Snapshot returns the breaker's current status.
func (cb *CircuitBreaker) Snapshot() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Status{
		State:            cb.state,
		FailureCount:     cb.failureCount,
		LastFailureAt:    cb.lastFailureAt,
		FailureThreshold: cb.failureThreshold,
		OpenTimeout:      cb.openTimeout.String(),
	}
}
