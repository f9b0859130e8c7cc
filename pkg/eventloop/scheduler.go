// Package eventloop moves blocking collaborator calls (address search,
// identity lookup, image resizing) off the editor event path and delivers
// their continuations back onto it, so editor state is only ever mutated from
// one place at a time.
package eventloop

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Call performs the blocking part of an async operation and returns the
// continuation that applies its result. A nil continuation is skipped.
type Call func(ctx context.Context) func()

// Scheduler runs calls and applies their continuations on the event path.
type Scheduler interface {
	Go(ctx context.Context, call Call)
}

// Inline runs the call and its continuation synchronously. It is the
// deterministic default used by tests and the terminal renderer.
type Inline struct{}

// Go implements Scheduler.
func (Inline) Go(ctx context.Context, call Call) {
	if call == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if apply := call(ctx); apply != nil {
		apply()
	}
}

// Option configures a Loop.
type Option func(*Loop)

// WithLocker makes the loop hold locker while applying continuations. Hosts
// that also mutate editors from other goroutines (HTTP handlers) share the
// same locker.
func WithLocker(locker sync.Locker) Option {
	return func(l *Loop) {
		l.locker = locker
	}
}

// WithLogger sets the logger used for continuation panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loop runs calls on goroutines and queues their continuations until the
// host drains them with Drain, Flush or Run.
type Loop struct {
	mu       sync.Mutex
	pending  []func()
	inflight int        // running calls
	idle     *sync.Cond // signalled when inflight drops to zero
	wake     chan struct{}
	locker   sync.Locker
	logger   *slog.Logger
}

// NewLoop constructs a Loop.
func NewLoop(options ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	l.idle = sync.NewCond(&l.mu)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Go implements Scheduler.
func (l *Loop) Go(ctx context.Context, call Call) {
	if call == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	l.mu.Lock()
	l.inflight++
	l.mu.Unlock()

	go func() {
		var apply func()
		defer func() { l.finish(apply) }()
		apply = call(ctx)
	}()
}

// finish queues apply, if any, and retires one in-flight call.
func (l *Loop) finish(apply func()) {
	l.mu.Lock()
	if apply != nil {
		l.pending = append(l.pending, apply)
	}
	l.inflight--
	if l.inflight == 0 {
		l.idle.Broadcast()
	}
	l.mu.Unlock()

	if apply == nil {
		return
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Drain applies every queued continuation and reports how many ran.
func (l *Loop) Drain() int {
	l.mu.Lock()
	queued := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(queued) == 0 {
		return 0
	}
	if l.locker != nil {
		l.locker.Lock()
		defer l.locker.Unlock()
	}
	for _, apply := range queued {
		l.apply(apply)
	}
	return len(queued)
}

// Flush waits for in-flight calls and drains until the loop is idle,
// including calls scheduled by continuations. It is safe to call from several
// goroutines while others keep scheduling.
func (l *Loop) Flush() {
	for {
		l.wait()
		if l.Drain() == 0 {
			return
		}
	}
}

func (l *Loop) wait() {
	l.mu.Lock()
	for l.inflight > 0 {
		l.idle.Wait()
	}
	l.mu.Unlock()
}

// Run drains continuations as they arrive until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.Drain()
		}
	}
}

func (l *Loop) apply(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("eventloop: continuation panicked", "panic", r)
		}
	}()
	fn()
}
