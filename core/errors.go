package core

import "errors"

var (
	// ErrHandlerNotFound is returned when a handoff targets a handler that
	// is not registered. It signals a configuration problem and is never
	// retried.
	ErrHandlerNotFound = errors.New("handler not found")
)
