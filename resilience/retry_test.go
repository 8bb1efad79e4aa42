package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(optFns ...func(o *Options)) *Executor {
	base := func(o *Options) {
		o.Policy = RetryPolicy{MaxRetries: 3, BackoffFactor: 2.0, BackoffUnit: time.Microsecond}
	}
	return NewExecutor(append([]func(o *Options){base}, optFns...)...)
}

func TestExecutor_SucceedsFirstAttempt(t *testing.T) {
	e := newTestExecutor()
	calls := 0
	err := e.Do(context.Background(), "translate", func(context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_RetriesTransientFailures(t *testing.T) {
	e := newTestExecutor()
	calls := 0
	err := e.Do(context.Background(), "translate", func(context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError("translate", CodeThrottled, errors.New("throttled"))
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutor_ExhaustsRetries(t *testing.T) {
	e := newTestExecutor()
	calls := 0
	transient := NewTransientError("translate", CodeServerError, errors.New("internal"))
	err := e.Do(context.Background(), "translate", func(context.Context) error {
		calls++
		return transient
	})
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestExecutor_NonRetryableFailsImmediately(t *testing.T) {
	e := newTestExecutor()
	calls := 0
	perm := NewPermanentError("translate", CodeValidation, errors.New("bad input"))
	err := e.Do(context.Background(), "translate", func(context.Context) error {
		calls++
		return perm
	})
	assert.ErrorIs(t, err, perm)
	assert.Equal(t, 1, calls)
}

func TestExecutor_RetriesCanOpenCircuit(t *testing.T) {
	reg := NewBreakerRegistry(func(o *BreakerOptions) { o.FailureThreshold = 5 })
	e := newTestExecutor(func(o *Options) {
		o.Registry = reg
		o.Policy = RetryPolicy{MaxRetries: 5, BackoffFactor: 2.0, BackoffUnit: time.Microsecond}
	})

	calls := 0
	err := e.Do(context.Background(), "inference", func(context.Context) error {
		calls++
		return NewTransientError("inference", CodeServerError, errors.New("internal"))
	})
	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, StateOpen, reg.Get("inference").State())
}

func TestExecutor_OpenCircuitFailsFast(t *testing.T) {
	reg := NewBreakerRegistry(func(o *BreakerOptions) { o.FailureThreshold = 1 })
	e := newTestExecutor(func(o *Options) { o.Registry = reg })

	require.Error(t, e.Do(context.Background(), "transcribe", func(context.Context) error {
		return NewTransientError("transcribe", CodeServerError, errors.New("internal"))
	}))
	require.Equal(t, StateOpen, reg.Get("transcribe").State())

	calls := 0
	err := e.Do(context.Background(), "transcribe", func(context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 0, calls)
}

func TestCall_ReturnsValue(t *testing.T) {
	e := newTestExecutor()
	v, err := Call(context.Background(), e, "translate", func(context.Context) (string, error) {
		return "hello", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestCall_ZeroValueOnFailure(t *testing.T) {
	e := newTestExecutor()
	v, err := Call(context.Background(), e, "translate", func(context.Context) (string, error) {
		return "partial", NewPermanentError("translate", CodeAccessDenied, errors.New("denied"))
	})
	assert.Error(t, err)
	assert.Empty(t, v)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", NewTransientError("s", CodeThrottled, errors.New("x")), true},
		{"permanent", NewPermanentError("s", CodeNotFound, errors.New("x")), false},
		{"wrapped permanent", errors.Join(errors.New("ctx"), NewPermanentError("s", CodeValidation, errors.New("x"))), false},
		{"unclassified defaults to transient", errors.New("x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
