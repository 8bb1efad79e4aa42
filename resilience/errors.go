package resilience

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned when a call is rejected because the circuit
// breaker for the service is open. The underlying function is not invoked.
var ErrCircuitOpen = errors.New("circuit breaker is open: service unavailable")

// Failure classification codes attached to ServiceError. The retry policy
// branches on the Retryable flag rather than string-matching codes.
const (
	CodeThrottled    = "throttled"
	CodeServerError  = "server_error"
	CodeValidation   = "validation"
	CodeAccessDenied = "access_denied"
	CodeNotFound     = "not_found"
)

// ServiceError is a typed external service failure with an explicit
// retryability classification attached at the call site.
type ServiceError struct {
	Service   string
	Code      string
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Code, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *ServiceError) Unwrap() error { return e.Err }

// NewTransientError classifies a failure as retryable (throttling or
// internal/server error class).
func NewTransientError(service, code string, err error) *ServiceError {
	return &ServiceError{Service: service, Code: code, Retryable: true, Err: err}
}

// NewPermanentError classifies a failure as non-retryable (bad input,
// permission denied, not found class).
func NewPermanentError(service, code string, err error) *ServiceError {
	return &ServiceError{Service: service, Code: code, Retryable: false, Err: err}
}

// IsRetryable reports whether an error should be retried. Classified errors
// carry their own flag; unclassified errors default to retryable, matching
// the treatment of unexpected failures as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return true
}
