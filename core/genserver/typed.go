package genserver

import (
	"context"
	"time"
)

type (
	// TypedBehavior narrows the callback contract to a closed set of cast
	// and call message types. Closed sets are usually sealed interfaces: an
	// interface with an unexported marker method that each variant
	// implements, so the compiler rejects foreign payloads at the boundary.
	// Execution semantics are identical to Behavior; every method still
	// runs on the worker goroutine.
	TypedBehavior[CastMsg, CallMsg, State any] interface {
		Init(args ...any) (State, error)
		HandleCast(msg CastMsg, state State) (State, error)
		HandleCall(msg CallMsg, state State) (resp any, next State, err error)
		Terminate(state State)
	}

	// TypedServer wraps Server, restricting Cast and Call payloads to the
	// declared message types. It adds no concurrency semantics of its own:
	// all queuing, serialization and reply delivery is the wrapped Server's.
	TypedServer[CastMsg, CallMsg, State any] struct {
		srv *Server
	}
)

// NewTyped creates a typed server in the created state.
func NewTyped[CastMsg, CallMsg, State any](opt Options, b TypedBehavior[CastMsg, CallMsg, State]) *TypedServer[CastMsg, CallMsg, State] {
	return &TypedServer[CastMsg, CallMsg, State]{
		srv: New(opt, typedAdapter[CastMsg, CallMsg, State]{b: b}),
	}
}

// ID returns the server identifier.
func (t *TypedServer[CastMsg, CallMsg, State]) ID() string { return t.srv.ID() }

// Done is closed when the worker goroutine has exited.
func (t *TypedServer[CastMsg, CallMsg, State]) Done() <-chan struct{} { return t.srv.Done() }

// Start spawns the worker and runs Init on it. See Server.Start.
func (t *TypedServer[CastMsg, CallMsg, State]) Start(args ...any) error {
	return t.srv.Start(args...)
}

// Stop shuts the server down. See Server.Stop.
func (t *TypedServer[CastMsg, CallMsg, State]) Stop(ctx context.Context) error {
	return t.srv.Stop(ctx)
}

// StopTimeout is Stop bounded by d. d <= 0 waits indefinitely.
func (t *TypedServer[CastMsg, CallMsg, State]) StopTimeout(d time.Duration) error {
	return t.srv.StopTimeout(d)
}

// Cast enqueues a fire-and-forget message. See Server.Cast.
func (t *TypedServer[CastMsg, CallMsg, State]) Cast(msg CastMsg) error {
	return t.srv.Cast(msg)
}

// Call enqueues a request and waits for the reply. See Server.Call.
func (t *TypedServer[CastMsg, CallMsg, State]) Call(ctx context.Context, msg CallMsg) (any, error) {
	return t.srv.Call(ctx, msg)
}

// CallTimeout is Call bounded by d. d <= 0 waits indefinitely.
func (t *TypedServer[CastMsg, CallMsg, State]) CallTimeout(msg CallMsg, d time.Duration) (any, error) {
	return t.srv.CallTimeout(msg, d)
}

// typedAdapter bridges TypedBehavior onto the untyped Behavior consumed by
// the worker loop. The assertions cannot fail: Cast and Call only accept
// the declared types and the state is always what Init/handlers produced.
type typedAdapter[CastMsg, CallMsg, State any] struct {
	b TypedBehavior[CastMsg, CallMsg, State]
}

func (a typedAdapter[CastMsg, CallMsg, State]) Init(args ...any) (any, error) {
	return a.b.Init(args...)
}

func (a typedAdapter[CastMsg, CallMsg, State]) HandleCast(msg, state any) (any, error) {
	return a.b.HandleCast(msg.(CastMsg), asState[State](state))
}

func (a typedAdapter[CastMsg, CallMsg, State]) HandleCall(msg, state any) (any, any, error) {
	return a.b.HandleCall(msg.(CallMsg), asState[State](state))
}

func (a typedAdapter[CastMsg, CallMsg, State]) Terminate(state any) {
	a.b.Terminate(asState[State](state))
}

// asState unboxes the worker's state. A nil interface maps to the zero
// value so interface-typed State params survive a nil initial state.
func asState[S any](state any) S {
	if state == nil {
		var zero S
		return zero
	}
	return state.(S)
}
