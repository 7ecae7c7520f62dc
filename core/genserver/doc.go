// Package genserver provides a single-actor concurrency primitive modeled
// after the Erlang/OTP generic server: private state owned by one worker
// goroutine, mutated only through serialized message handling.
//
// Each server drains an unbounded FIFO mailbox on a dedicated goroutine.
// Application code supplies a [Behavior] (or a [TypedBehavior]) whose
// callbacks all run on that goroutine, so state needs no locking:
//
//   - Init produces the initial state from the Start arguments
//   - HandleCast applies a fire-and-forget message to the state
//   - HandleCall answers a request and applies it to the state
//   - Terminate runs best-effort cleanup on shutdown
//
// # Creating a server
//
//	srv := genserver.New(genserver.Options{}, genserver.Funcs{
//	    InitFunc: func(args ...any) (any, error) { return 0, nil },
//	    HandleCastFunc: func(msg, state any) (any, error) {
//	        return state.(int) + 1, nil
//	    },
//	    HandleCallFunc: func(msg, state any) (any, any, error) {
//	        return state, state, nil
//	    },
//	})
//	if err := srv.Start(); err != nil { ... }
//	defer srv.StopTimeout(time.Second)
//
// # Interaction modes
//
// [Server.Cast] is fire-and-forget: it enqueues and returns. [Server.Call]
// enqueues a request together with a single-use reply slot and blocks the
// caller until the worker answers or the context expires. Messages are
// processed strictly in enqueue order; concurrent callers are answered in
// mailbox order.
//
// # Error containment
//
// A callback error or panic never kills the worker. For a call it surfaces
// on the caller's goroutine as a [*CallbackError]; for a cast it is logged
// and the failed transition is discarded, keeping the previous state. The
// worker exits only through Stop.
//
// # Typed variant
//
// [NewTyped] narrows cast/call payloads to a closed message set at compile
// time, delegating all execution semantics to the same worker loop. See
// examples/counter for a sealed-interface message set in practice.
package genserver
