package genserver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Sealed cast message set.
type (
	counterCast interface{ counterCast() }

	castIncrement struct{}
	castDecrement struct{}
)

func (castIncrement) counterCast() {}
func (castDecrement) counterCast() {}

// Sealed call message set.
type (
	counterCall interface{ counterCall() }

	callGetCount        struct{}
	callIncrementAndGet struct{}
)

func (callGetCount) counterCall()        {}
func (callIncrementAndGet) counterCall() {}

// counter implements TypedBehavior[counterCast, counterCall, int].
type counter struct{}

func (counter) Init(args ...any) (int, error) {
	if len(args) == 1 {
		return args[0].(int), nil
	}
	return 0, nil
}

func (counter) HandleCast(msg counterCast, state int) (int, error) {
	switch msg.(type) {
	case castIncrement:
		return state + 1, nil
	case castDecrement:
		return state - 1, nil
	}
	return state, nil
}

func (counter) HandleCall(msg counterCall, state int) (any, int, error) {
	switch msg.(type) {
	case callGetCount:
		return state, state, nil
	case callIncrementAndGet:
		return state + 1, state + 1, nil
	}
	return nil, state, fmt.Errorf("%w: %T", ErrNotImplemented, msg)
}

func (counter) Terminate(int) {}

var _ TypedBehavior[counterCast, counterCall, int] = counter{}

func newTypedCounter(t *testing.T) *TypedServer[counterCast, counterCall, int] {
	t.Helper()
	srv := NewTyped[counterCast, counterCall, int](Options{Logger: discardLogger()}, counter{})
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.StopTimeout(time.Second) })
	return srv
}

func TestTypedServer_counter(t *testing.T) {
	srv := newTypedCounter(t)

	require.NoError(t, srv.Cast(castIncrement{}))
	require.NoError(t, srv.Cast(castIncrement{}))
	require.NoError(t, srv.Cast(castDecrement{}))

	res, err := srv.CallTimeout(callGetCount{}, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, res)

	res, err = srv.CallTimeout(callIncrementAndGet{}, time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, res)
}

func TestTypedServer_initArgs(t *testing.T) {
	srv := NewTyped[counterCast, counterCall, int](Options{Logger: discardLogger()}, counter{})
	require.NoError(t, srv.Start(10))
	defer srv.StopTimeout(time.Second)

	res, err := srv.CallTimeout(callGetCount{}, time.Second)
	require.NoError(t, err)
	require.Equal(t, 10, res)
}

func TestTypedServer_lifecycle(t *testing.T) {
	srv := NewTyped[counterCast, counterCall, int](Options{Logger: discardLogger()}, counter{})

	require.ErrorIs(t, srv.Cast(castIncrement{}), ErrNotRunning)

	require.NoError(t, srv.Start())
	require.ErrorIs(t, srv.Start(), ErrAlreadyStarted)

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case <-srv.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after stop")
	}
}

// interfaceState verifies the adapter survives interface-typed state with a
// nil initial value.
type interfaceState struct{}

func (interfaceState) Init(...any) (error, error) { return nil, nil }

func (interfaceState) HandleCast(msg counterCast, state error) (error, error) {
	return fmt.Errorf("saw %T", msg), nil
}

func (interfaceState) HandleCall(msg counterCall, state error) (any, error, error) {
	if state == nil {
		return "nil-state", state, nil
	}
	return state.Error(), state, nil
}

func (interfaceState) Terminate(error) {}

func TestTypedServer_nilInterfaceState(t *testing.T) {
	srv := NewTyped[counterCast, counterCall, error](Options{Logger: discardLogger()}, interfaceState{})
	require.NoError(t, srv.Start())
	defer srv.StopTimeout(time.Second)

	res, err := srv.CallTimeout(callGetCount{}, time.Second)
	require.NoError(t, err)
	require.Equal(t, "nil-state", res)

	require.NoError(t, srv.Cast(castIncrement{}))

	res, err = srv.CallTimeout(callGetCount{}, time.Second)
	require.NoError(t, err)
	require.Equal(t, "saw genserver.castIncrement", res)
}
