// Package errors classifies harvest failures by the scope they poison.
package errors

import (
	"errors"
	"fmt"
)

// Scope describes how far a failure propagates.
type Scope string

const (
	// ScopeFatal failures abort the whole run. Losing the authorized
	// session is the only fatal condition.
	ScopeFatal Scope = "fatal"
	// ScopeChannel failures abort one channel's harvest; the orchestrator
	// records them and moves on to the next channel.
	ScopeChannel Scope = "channel"
	// ScopeItem failures affect a single message's download or publish and
	// never touch sibling tasks.
	ScopeItem Scope = "item"
)

// ErrUnauthorized is returned when the session is not (or no longer)
// authorized. It is always fatal.
var ErrUnauthorized = errors.New("session not authorized")

// Error wraps a failure with its propagation scope.
type Error struct {
	Scope Scope
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Scope, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a run-aborting failure.
func Fatal(op string, err error) error {
	return &Error{Scope: ScopeFatal, Op: op, Err: err}
}

// Channel wraps err as a single-channel failure.
func Channel(op string, err error) error {
	return &Error{Scope: ScopeChannel, Op: op, Err: err}
}

// Item wraps err as a single-message failure.
func Item(op string, err error) error {
	return &Error{Scope: ScopeItem, Op: op, Err: err}
}

// IsFatal reports whether err should abort the whole run.
func IsFatal(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var e *Error
	return errors.As(err, &e) && e.Scope == ScopeFatal
}
