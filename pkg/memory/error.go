package memory

import "errors"

var (
	// ErrNotConfigured is returned when memory operations are attempted
	// but no session has been configured for the backend.
	ErrNotConfigured = errors.New("memory not configured")

	// ErrTurnFinalized is returned when a pending assistant turn is
	// finalized or discarded more than once.
	ErrTurnFinalized = errors.New("assistant turn already finalized")

	// ErrUnknownBackend is returned for backend identifiers the session
	// manager does not recognize.
	ErrUnknownBackend = errors.New("unknown backend")
)
