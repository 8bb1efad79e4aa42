package resilience

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/missionai/agrimesh/logging"
)

// DefaultMaxRetries is the total number of attempts per external call.
const DefaultMaxRetries = 3

// DefaultBackoffFactor is the base of the exponential backoff delay
// (backoffFactor^attempt units).
const DefaultBackoffFactor = 2.0

// RetryPolicy bounds retries of transient external failures with exponential
// backoff. Non-retryable failures are surfaced immediately without waiting.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts.
	MaxRetries int

	// BackoffFactor is raised to the attempt number to compute the delay
	// before the next attempt.
	BackoffFactor float64

	// BackoffUnit scales the computed delay; defaults to one second.
	// Tests shrink it to keep backoff sleeps negligible.
	BackoffUnit time.Duration
}

// DefaultRetryPolicy returns the production retry configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries, BackoffFactor: DefaultBackoffFactor, BackoffUnit: time.Second}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	unit := p.BackoffUnit
	if unit == 0 {
		unit = time.Second
	}
	return time.Duration(math.Pow(p.BackoffFactor, float64(attempt)) * float64(unit))
}

// Options configure an Executor.
type Options struct {
	Registry *BreakerRegistry
	Policy   RetryPolicy
	Logger   logging.Logger
}

// Executor wraps external service calls with a circuit breaker and the retry
// policy. One Executor is shared by all callers; breaker state is keyed by
// service name through the registry.
type Executor struct {
	registry *BreakerRegistry
	policy   RetryPolicy
	logger   logging.Logger
}

// NewExecutor constructs an Executor with defaulted options.
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := Options{
		Registry: NewBreakerRegistry(),
		Policy:   DefaultRetryPolicy(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = NewBreakerRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Executor{registry: opts.Registry, policy: opts.Policy, logger: opts.Logger}
}

// Registry exposes the breaker registry for introspection and manual resets.
func (e *Executor) Registry() *BreakerRegistry { return e.registry }

// Do invokes fn for the named service under breaker protection, retrying
// transient failures with exponential backoff. An open circuit fails fast:
// the call is not attempted and no backoff is spent. Each attempt passes
// through the breaker, so a retry sequence can itself open the circuit.
func (e *Executor) Do(ctx context.Context, service string, fn func(ctx context.Context) error) error {
	cb := e.registry.Get(service)

	var lastErr error
	for attempt := 0; attempt < e.policy.MaxRetries; attempt++ {
		start := time.Now()
		err := cb.Execute(func() error { return fn(ctx) })
		if err == nil {
			e.logger.Debug("service call succeeded", "service", service, "attempt", attempt)
			return nil
		}
		lastErr = err

		if errors.Is(err, ErrCircuitOpen) {
			e.logger.Warn("service call rejected, circuit open", "service", service)
			return err
		}
		if !IsRetryable(err) {
			e.logger.Error("service call failed, non-retryable", "service", service, "error", err)
			return err
		}

		e.logger.Warn("service call failed, will retry",
			"service", service, "attempt", attempt, "duration", time.Since(start), "error", err)

		if attempt+1 >= e.policy.MaxRetries {
			break
		}
		if err := sleep(ctx, e.policy.delay(attempt)); err != nil {
			return err
		}
	}

	e.logger.Error("service call exhausted retries", "service", service, "error", lastErr)
	return lastErr
}

// Call runs a value-returning function through the executor for the named
// service, returning the zero value on failure.
func Call[T any](ctx context.Context, e *Executor, service string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, service, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
