package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for deterministic breaker tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock, threshold int, timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(func(o *BreakerOptions) {
		o.FailureThreshold = threshold
		o.OpenTimeout = timeout
		o.Clock = clock.Now
	})
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, 3, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		err := cb.Execute(func() error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, StateClosed, cb.State())
	}

	err := cb.Execute(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_OpenRejectsWithoutInvoking(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, 1, time.Minute)

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.State())

	invoked := false
	err := cb.Execute(func() error { invoked = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, invoked)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, 1, time.Minute)

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.State())

	clock.Advance(time.Minute)

	err := cb.Execute(func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Snapshot().FailureCount)
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, 5, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		require.Error(t, cb.Execute(func() error { return boom }))
	}
	require.Equal(t, StateOpen, cb.State())

	clock.Advance(time.Minute)

	err := cb.Execute(func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, 3, time.Minute)
	boom := errors.New("boom")

	require.Error(t, cb.Execute(func() error { return boom }))
	require.Error(t, cb.Execute(func() error { return boom }))
	require.NoError(t, cb.Execute(func() error { return nil }))

	// Counter reset, so two more failures must not open the circuit.
	require.Error(t, cb.Execute(func() error { return boom }))
	require.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_SingleHalfOpenTrial(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, 1, time.Minute)

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	clock.Advance(time.Minute)

	// First caller is admitted as the trial and blocks; concurrent callers
	// must be rejected while the trial is in flight.
	trialStarted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(func() error {
			close(trialStarted)
			<-release
			return nil
		})
	}()

	<-trialStarted
	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, 1, time.Minute)

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Snapshot().FailureCount)
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestBreakerRegistry_IsolatedPerService(t *testing.T) {
	reg := NewBreakerRegistry(func(o *BreakerOptions) { o.FailureThreshold = 1 })

	require.Error(t, reg.Get("transcribe").Execute(func() error { return errors.New("boom") }))

	assert.Equal(t, StateOpen, reg.Get("transcribe").State())
	assert.Equal(t, StateClosed, reg.Get("translate").State())

	all := reg.AllStatus()
	assert.Len(t, all, 2)
	assert.Equal(t, StateOpen, all["transcribe"].State)

	assert.True(t, reg.Reset("transcribe"))
	assert.False(t, reg.Reset("unknown"))
	assert.Equal(t, StateClosed, reg.Get("transcribe").State())
}
