// Package voice arbitrates microphone ownership between competing
// listeners (push-to-talk capture, wake-word detection, dictation). The
// Arbiter is an explicit service constructed once and injected into each
// consumer; ownership changes are delivered as revoke callbacks rather
// than polled flags.
package voice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrNotOwner is returned by Release when the caller does not hold
	// the microphone.
	ErrNotOwner = errors.New("not the current microphone owner")

	// ErrEmptyOwner is returned by Acquire for a blank owner name.
	ErrEmptyOwner = errors.New("owner name is required")
)

// RevokeFunc is called when another owner takes the microphone. It runs on
// the acquiring goroutine; implementations must not call back into the
// Arbiter.
type RevokeFunc func(newOwner string)

// Arbiter tracks which component currently owns the microphone.
type Arbiter struct {
	logger *slog.Logger

	mu     sync.Mutex
	owner  string
	revoke RevokeFunc
}

// NewArbiter creates an arbiter with no current owner.
func NewArbiter(logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Arbiter{logger: logger}
}

// Acquire transfers microphone ownership to owner. Any previous owner's
// revoke callback fires before Acquire returns. Re-acquiring by the current
// owner just replaces its callback.
func (a *Arbiter) Acquire(owner string, revoke RevokeFunc) error {
	if owner == "" {
		return fmt.Errorf("%w", ErrEmptyOwner)
	}

	a.mu.Lock()
	previous := a.owner
	previousRevoke := a.revoke
	a.owner = owner
	a.revoke = revoke
	a.mu.Unlock()

	if previous != "" && previous != owner && previousRevoke != nil {
		previousRevoke(owner)
	}

	a.logger.Debug("microphone acquired", "owner", owner, "previous", previous)

	return nil
}

// Release gives up ownership. Only the current owner may release; a stale
// release from an already-revoked owner returns ErrNotOwner.
func (a *Arbiter) Release(owner string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.owner != owner {
		return fmt.Errorf("%w: held by %q, released by %q", ErrNotOwner, a.owner, owner)
	}

	a.owner = ""
	a.revoke = nil

	a.logger.Debug("microphone released", "owner", owner)

	return nil
}

// Owner returns the current owner name, or "" when the microphone is free.
func (a *Arbiter) Owner() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.owner
}
