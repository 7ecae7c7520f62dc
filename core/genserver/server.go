package genserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/gensrv-go/internal/reflector"
)

// OnPanic is invoked when a user callback panics. The panic is contained
// either way; the hook exists for logging and alerting.
type OnPanic func(recovered any, stack []byte, msg any)

// Options configures a Server. The zero value is usable.
type Options struct {
	// ID identifies the server in logs and metrics. Default: random nanoid.
	ID string
	// Logger receives structured server logs. Default: slog.Default().
	Logger *slog.Logger
	// Metrics receives instrumentation callbacks. Default: no-op.
	Metrics Metrics
	// OnPanic is called with the recovered value, stack and message when a
	// callback panics. Default: logs via Logger.
	OnPanic OnPanic
}

type lifecycle int

const (
	stateCreated lifecycle = iota
	stateRunning
	stateStopping
	stateStopped
	stateFailed
)

func (s lifecycle) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateRunning:
		return "running"
	case stateStopping:
		return "stopping"
	case stateStopped:
		return "stopped"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Server owns private state and processes messages one at a time on a
// dedicated worker goroutine. Producers interact through Cast and Call;
// the state itself is never reachable from outside the worker.
type Server struct {
	id      string
	log     *slog.Logger
	metrics Metrics
	onPanic OnPanic

	behavior Behavior
	mailbox  *mailbox

	mu    sync.Mutex
	state lifecycle

	done chan struct{} // closed when the worker goroutine has exited
}

// New creates a server in the created state. Call Start to spawn the worker.
func New(opt Options, b Behavior) *Server {
	if opt.ID == "" {
		opt.ID = gonanoid.Must(8)
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}

	log := opt.Logger.With(slog.String("genserver", opt.ID))

	if opt.OnPanic == nil {
		opt.OnPanic = func(recovered any, stack []byte, msg any) {
			log.Error("callback panicked",
				slog.Any("recovered", recovered),
				slog.String("stack", string(stack)),
				slog.Any("msg", msg),
			)
		}
	}

	return &Server{
		id:       opt.ID,
		log:      log,
		metrics:  opt.Metrics,
		onPanic:  opt.OnPanic,
		behavior: b,
		mailbox:  newMailbox(),
		done:     make(chan struct{}),
	}
}

// ID returns the server identifier.
func (s *Server) ID() string { return s.id }

// Done is closed when the worker goroutine has exited.
func (s *Server) Done() <-chan struct{} { return s.done }

// Start spawns the worker goroutine and blocks until Init has run on it.
// Init executing inside the worker guarantees state is only ever touched
// from one goroutine. An Init failure is fatal: the server transitions to
// the failed state, never accepts messages, and the error is returned here.
func (s *Server) Start(args ...any) error {
	s.mu.Lock()
	if s.state != stateCreated {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = stateRunning
	s.mu.Unlock()

	initDone := make(chan error, 1)
	go s.loop(args, initDone)

	if err := <-initDone; err != nil {
		return fmt.Errorf("genserver start: %w", err)
	}

	s.log.Debug("started")
	return nil
}

// Cast enqueues a fire-and-forget message. It never blocks beyond the
// enqueue itself and fails only when the server is not running.
func (s *Server) Cast(msg any) error {
	if err := s.ensureRunning(); err != nil {
		return err
	}
	depth := s.mailbox.enqueue(envelope{kind: entryCast, msg: msg})
	s.metrics.MailboxDepth(s.id).Set(float64(depth))
	return nil
}

// Call enqueues a request and blocks until the worker answers, ctx expires
// or the server stops. A ctx deadline expiry yields an error satisfying
// errors.Is(err, ErrCallTimeout); the worker is not interrupted and its
// eventual write to the abandoned reply slot is a safe no-op.
func (s *Server) Call(ctx context.Context, msg any) (any, error) {
	if err := s.ensureRunning(); err != nil {
		return nil, err
	}

	env := envelope{
		kind:  entryCall,
		id:    gonanoid.Must(12),
		msg:   msg,
		reply: make(chan reply, 1),
	}
	depth := s.mailbox.enqueue(env)
	s.metrics.MailboxDepth(s.id).Set(float64(depth))

	select {
	case r := <-env.reply:
		return r.value, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: call %s", ErrCallTimeout, env.id)
		}
		return nil, fmt.Errorf("call %s: %w", env.id, ctx.Err())
	case <-s.done:
		// Worker exited while we waited. Prefer an answer that raced in.
		select {
		case r := <-env.reply:
			return r.value, r.err
		default:
			return nil, ErrStopped
		}
	}
}

// CallTimeout is Call bounded by d. d <= 0 waits indefinitely.
func (s *Server) CallTimeout(msg any, d time.Duration) (any, error) {
	ctx := context.Background()
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return s.Call(ctx, msg)
}

// Stop enqueues the stop sentinel and waits, bounded by ctx, for the worker
// to exit. Entries enqueued before Stop are still processed; Terminate runs
// exactly once. On ctx expiry the worker is left running (cooperative
// shutdown only) and an error satisfying errors.Is(err, ErrStopTimeout) is
// returned. Stop on an already-stopped or never-started server is a no-op
// returning nil.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case stateCreated:
		// Never started: no worker, no state, no Terminate.
		s.state = stateStopped
		s.mu.Unlock()
		close(s.done)
		return nil
	case stateStopped, stateFailed:
		s.mu.Unlock()
		return nil
	case stateStopping:
		s.mu.Unlock()
	case stateRunning:
		s.state = stateStopping
		s.mu.Unlock()
		depth := s.mailbox.enqueue(envelope{kind: entryStop})
		s.metrics.MailboxDepth(s.id).Set(float64(depth))
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStopTimeout, ctx.Err())
	}
}

// StopTimeout is Stop bounded by d. d <= 0 waits indefinitely.
func (s *Server) StopTimeout(d time.Duration) error {
	ctx := context.Background()
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return s.Stop(ctx)
}

// ---- internals ----

func (s *Server) ensureRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateRunning:
		return nil
	case stateCreated:
		return ErrNotStarted
	case stateStopping, stateStopped:
		return ErrStopped
	default:
		return ErrNotRunning
	}
}

func (s *Server) setState(st lifecycle) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.log.Debug("state change", slog.String("state", st.String()))
}

// loop is the single consumer of the mailbox. All state lives on its stack.
func (s *Server) loop(args []any, initDone chan<- error) {
	defer func() {
		// Callback panics are contained in the run* helpers; reaching this
		// recover means the loop itself faulted.
		if r := recover(); r != nil {
			s.log.Error("worker loop crashed",
				slog.Any("recovered", r),
				slog.String("stack", string(debug.Stack())),
			)
			s.setState(stateFailed)
		}
		close(s.done)
	}()

	st, err := s.runInit(args)
	if err != nil {
		s.setState(stateFailed)
		initDone <- err
		return
	}
	initDone <- nil

	for {
		e := s.mailbox.dequeue()
		s.metrics.MailboxDepth(s.id).Set(float64(s.mailbox.depth()))

		switch e.kind {
		case entryStop:
			s.runTerminate(st)
			s.setState(stateStopped)
			s.log.Debug("stopped")
			return

		case entryCast:
			next, err := s.runCast(e.msg, st)
			if err != nil {
				// Failed transition is not applied; the loop keeps going.
				s.log.Error("handle_cast failed",
					slog.String("msg_type", msgLabel(e.msg)),
					slog.Any("error", err),
				)
				continue
			}
			st = next

		case entryCall:
			resp, next, err := s.runCall(e.msg, st)
			if err != nil {
				s.log.Error("handle_call failed",
					slog.String("msg_type", msgLabel(e.msg)),
					slog.String("call_id", e.id),
					slog.Any("error", err),
				)
				e.reply <- reply{err: err}
				continue
			}
			st = next
			e.reply <- reply{value: resp}

		default:
			s.log.Warn("unknown mailbox entry", slog.Int("kind", int(e.kind)))
		}
	}
}

func (s *Server) runInit(args []any) (st any, err error) {
	timer := s.metrics.MessageDuration("init")
	defer func() {
		if r := recover(); r != nil {
			s.onPanic(r, debug.Stack(), nil)
			s.metrics.Panics("init").Inc()
			err = &CallbackError{Op: "init", Err: fmt.Errorf("panic: %v", r)}
		}
		s.metrics.MessageProcessed("init", err == nil)
		timer.ObserveDuration()
	}()

	st, err = s.behavior.Init(args...)
	if err != nil {
		err = &CallbackError{Op: "init", Err: err}
	}
	return st, err
}

func (s *Server) runCast(msg, st any) (next any, err error) {
	label := msgLabel(msg)
	timer := s.metrics.MessageDuration(label)
	defer func() {
		if r := recover(); r != nil {
			s.onPanic(r, debug.Stack(), msg)
			s.metrics.Panics(label).Inc()
			err = &CallbackError{Op: "handle_cast", Msg: msg, Err: fmt.Errorf("panic: %v", r)}
		}
		s.metrics.MessageProcessed(label, err == nil)
		timer.ObserveDuration()
	}()

	next, err = s.behavior.HandleCast(msg, st)
	if err != nil {
		err = &CallbackError{Op: "handle_cast", Msg: msg, Err: err}
	}
	return next, err
}

func (s *Server) runCall(msg, st any) (resp, next any, err error) {
	label := msgLabel(msg)
	timer := s.metrics.MessageDuration(label)
	defer func() {
		if r := recover(); r != nil {
			s.onPanic(r, debug.Stack(), msg)
			s.metrics.Panics(label).Inc()
			err = &CallbackError{Op: "handle_call", Msg: msg, Err: fmt.Errorf("panic: %v", r)}
		}
		s.metrics.MessageProcessed(label, err == nil)
		timer.ObserveDuration()
	}()

	resp, next, err = s.behavior.HandleCall(msg, st)
	if err != nil {
		err = &CallbackError{Op: "handle_call", Msg: msg, Err: err}
	}
	return resp, next, err
}

func (s *Server) runTerminate(st any) {
	defer func() {
		if r := recover(); r != nil {
			s.onPanic(r, debug.Stack(), nil)
			s.metrics.Panics("terminate").Inc()
		}
	}()
	s.log.Debug("terminating")
	s.behavior.Terminate(st)
}

func msgLabel(msg any) string {
	if msg == nil {
		return "nil"
	}
	return reflector.TypeInfoOf(msg).Name
}
