package genserver

import (
	"errors"
	"fmt"
)

var (
	// Lifecycle errors
	ErrAlreadyStarted = errors.New("genserver already started")
	ErrNotRunning     = errors.New("genserver is not running")
	ErrStopTimeout    = errors.New("genserver did not stop in time")

	// Call errors
	ErrCallTimeout    = errors.New("call timed out waiting for reply")
	ErrNotImplemented = errors.New("call message not handled")
)

// ErrNotStarted and ErrStopped narrow ErrNotRunning by lifecycle phase.
// Both satisfy errors.Is(err, ErrNotRunning).
var (
	ErrNotStarted = fmt.Errorf("%w: not started", ErrNotRunning)
	ErrStopped    = fmt.Errorf("%w: stopped", ErrNotRunning)
)

// CallbackError wraps a failure raised by a user callback. For a call it is
// delivered to the waiting caller; for a cast it is logged and the failed
// state transition is discarded. Panics inside callbacks are recovered and
// carried here as the wrapped error.
type CallbackError struct {
	Op  string // "init", "handle_cast", "handle_call" or "terminate"
	Msg any    // message being handled; nil for init and terminate
	Err error
}

func (e *CallbackError) Error() string {
	if e.Msg == nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed for %T: %v", e.Op, e.Msg, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
