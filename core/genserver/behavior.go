package genserver

import "fmt"

// Behavior is the callback contract implemented by application code.
// Every method is invoked exclusively from the server's worker goroutine,
// so implementations never need their own locking around state.
type Behavior interface {
	// Init produces the initial state from the arguments passed to Start.
	// It runs as the first action on the worker goroutine; an error or
	// panic is fatal to startup.
	Init(args ...any) (any, error)

	// HandleCast processes a fire-and-forget message and returns the next
	// state. Returning an error discards the transition and keeps the
	// previous state.
	HandleCast(msg, state any) (any, error)

	// HandleCall processes a request and returns the reply plus the next
	// state. An error is delivered to the waiting caller instead of a
	// reply, and the previous state is kept.
	HandleCall(msg, state any) (resp, next any, err error)

	// Terminate is best-effort cleanup, run once when the server stops.
	// Failures are logged, never propagated.
	Terminate(state any)
}

// Funcs adapts plain functions to Behavior. Nil fields fall back to the
// default behaviors: nil InitFunc yields a nil initial state, unhandled
// casts are a legal no-op (state unchanged), unhandled calls answer with
// ErrNotImplemented, and Terminate does nothing.
type Funcs struct {
	InitFunc       func(args ...any) (any, error)
	HandleCastFunc func(msg, state any) (any, error)
	HandleCallFunc func(msg, state any) (resp, next any, err error)
	TerminateFunc  func(state any)
}

var _ Behavior = Funcs{}

func (f Funcs) Init(args ...any) (any, error) {
	if f.InitFunc == nil {
		return nil, nil
	}
	return f.InitFunc(args...)
}

func (f Funcs) HandleCast(msg, state any) (any, error) {
	if f.HandleCastFunc == nil {
		return state, nil
	}
	return f.HandleCastFunc(msg, state)
}

func (f Funcs) HandleCall(msg, state any) (any, any, error) {
	if f.HandleCallFunc == nil {
		return nil, state, fmt.Errorf("%w: %T", ErrNotImplemented, msg)
	}
	return f.HandleCallFunc(msg, state)
}

func (f Funcs) Terminate(state any) {
	if f.TerminateFunc != nil {
		f.TerminateFunc(state)
	}
}
