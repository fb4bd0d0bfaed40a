// Package dispatch provides execution contexts for running work off the
// caller's goroutine: a serial Queue that can act as a designated thread,
// plus Inline and Go executors for fire-and-forget delivery.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"github.com/rs/zerolog"

	"github.com/comalice/constructs/internal/logging"
)

// ErrQueueClosed is returned when work is submitted to, or was pending on, a
// closed Queue.
var ErrQueueClosed = errors.New("dispatch queue closed")

const defaultBuffer = 64

type job struct {
	ctx  context.Context
	fn   func(context.Context)
	done chan struct{} // nil for async jobs
}

// queueKey marks a context as running on a specific queue. Keys for
// different queues are distinct, so nested hops keep every marker.
type queueKey struct{ q *Queue }

// Queue runs submitted jobs one at a time, in submission order, on a single
// worker goroutine. With LockOSThread the worker is also pinned to one OS
// thread for its whole life.
type Queue struct {
	name       string
	buffer     int
	lockThread bool
	logger     *zerolog.Logger
	lazy       *logging.Lazy

	// worker is the goroutine id of the running worker, 0 when stopped.
	worker atomic.Int64

	jobs      chan job
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithName labels the queue in logs.
func WithName(name string) QueueOption {
	return func(q *Queue) {
		q.name = name
	}
}

// WithBuffer sets how many jobs may wait before submitters block.
func WithBuffer(n int) QueueOption {
	return func(q *Queue) {
		if n >= 0 {
			q.buffer = n
		}
	}
}

// LockOSThread pins the worker goroutine to its OS thread.
func LockOSThread() QueueOption {
	return func(q *Queue) {
		q.lockThread = true
	}
}

// WithLogger replaces the queue's logger.
func WithLogger(l zerolog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = &l
	}
}

// NewQueue creates a Queue and starts its worker.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		name:    "queue",
		buffer:  defaultBuffer,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger != nil {
		l := q.logger.With().Str("queue", q.name).Logger()
		q.logger = &l
	} else {
		q.lazy = logging.NewLazy("dispatch", "queue", q.name)
	}
	q.jobs = make(chan job, q.buffer)

	go q.run()
	return q
}

// Name returns the queue's label.
func (q *Queue) Name() string {
	return q.name
}

// run is the worker loop.
func (q *Queue) run() {
	defer close(q.stopped)
	if q.lockThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}
	q.worker.Store(goid.Get())
	defer q.worker.Store(0)

	for {
		select {
		case <-q.done:
			q.log().Debug().Msg("queue stopped")
			return
		default:
		}

		select {
		case j := <-q.jobs:
			q.exec(j)
		case <-q.done:
			q.log().Debug().Msg("queue stopped")
			return
		}
	}
}

// exec runs one job. A panicking job is logged and does not take the worker
// down; a synchronous submitter is released either way.
func (q *Queue) exec(j job) {
	defer func() {
		if r := recover(); r != nil {
			q.log().Error().Str("panic", fmt.Sprint(r)).Msg("job panicked")
		}
		if j.done != nil {
			close(j.done)
		}
	}()
	j.fn(context.WithValue(j.ctx, queueKey{q}, true))
}

func (q *Queue) log() *zerolog.Logger {
	if q.logger != nil {
		return q.logger
	}
	return q.lazy.Logger()
}

// IsCurrent reports whether the caller is running on q's worker goroutine,
// whatever context it holds. Async jobs and dispatched deliveries see true.
func (q *Queue) IsCurrent() bool {
	id := q.worker.Load()
	return id != 0 && id == goid.Get()
}

// OnQueue reports whether the caller is running on q: either on its worker
// goroutine, or holding a ctx that q handed to a running job (directly or
// through a nested Sync hop to another queue).
func OnQueue(ctx context.Context, q *Queue) bool {
	if q == nil {
		return false
	}
	if q.IsCurrent() {
		return true
	}
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(queueKey{q}).(bool)
	return v
}

// Sync runs fn on the queue and blocks until it returns. When the caller is
// already on this queue (see OnQueue), fn runs inline instead of deadlocking.
// The ctx passed to fn carries the queue marker.
func (q *Queue) Sync(ctx context.Context, fn func(context.Context)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if OnQueue(ctx, q) {
		fn(ctx)
		return nil
	}

	if q.closed() {
		return ErrQueueClosed
	}
	j := job{ctx: ctx, fn: fn, done: make(chan struct{})}
	select {
	case q.jobs <- j:
	case <-q.done:
		return ErrQueueClosed
	}

	select {
	case <-j.done:
		return nil
	case <-q.stopped:
		select {
		case <-j.done:
			return nil
		default:
			return ErrQueueClosed
		}
	}
}

// Async submits fn and returns without waiting. It blocks only while the
// buffer is full.
func (q *Queue) Async(fn func()) error {
	if q.closed() {
		return ErrQueueClosed
	}
	j := job{ctx: context.Background(), fn: func(context.Context) { fn() }}
	select {
	case q.jobs <- j:
		return nil
	case <-q.done:
		return ErrQueueClosed
	}
}

func (q *Queue) closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Close stops the worker after the job it is currently running. Pending
// jobs are dropped. Safe to call multiple times and from inside a job.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

// Done is closed once the worker has exited.
func (q *Queue) Done() <-chan struct{} {
	return q.stopped
}
