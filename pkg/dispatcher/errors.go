package dispatcher

import "errors"

var (
	// ErrAPINotFound is returned when no handler is registered for a method.
	ErrAPINotFound = errors.New("api not found")
	// ErrTransport is returned when a request cannot be decoded. No response
	// is delivered for it.
	ErrTransport = errors.New("transport failure")
)
