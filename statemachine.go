package constructs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"github.com/rs/zerolog"

	"github.com/comalice/constructs/dispatch"
	"github.com/comalice/constructs/internal/logging"
	"github.com/comalice/constructs/internal/weakref"
)

// firingKey tags the context handed to a machine's policy while that
// machine is mid-transition.
type firingKey struct{ m any }

// StateMachine holds one current state and advances it in response to
// events, as decided by a Policy.
//
// The policy is held weakly: once it is garbage collected, events are
// ignored. Without OnQueue the machine does no serialization of its own and
// concurrent FireEvent calls must be synchronized by the caller. With
// OnQueue all transitions run one at a time on the queue.
type StateMachine[S, E any] struct {
	mu    sync.RWMutex
	state S

	policy atomic.Pointer[weakref.Ref[Policy[S, E]]]
	queue  *dispatch.Queue

	// firing is the goroutine id running a transition step, 0 when idle.
	firing atomic.Int64

	logger *zerolog.Logger
	lazy   *logging.Lazy
}

// NewStateMachine creates a machine in the given initial state. It has no
// policy until SetPolicy is called.
func NewStateMachine[S, E any](initial S, opts ...Option) *StateMachine[S, E] {
	var o machineOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := &StateMachine[S, E]{
		state:  initial,
		queue:  o.queue,
		logger: o.logger,
	}
	if m.logger == nil {
		m.lazy = logging.NewLazy("statemachine")
	}
	return m
}

func (m *StateMachine[S, E]) log() *zerolog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return m.lazy.Logger()
}

// State returns the latest committed state.
func (m *StateMachine[S, E]) State() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetPolicy stores a weak reference to p. The machine does not keep p alive.
// A nil p, or one that cannot be held weakly (not a pointer, or a pointer
// to a tiny pointer-free type, see Subscribers), clears the policy.
func (m *StateMachine[S, E]) SetPolicy(p Policy[S, E]) {
	if p == nil {
		m.policy.Store(nil)
		return
	}
	ref, ok := weakref.Make(p)
	if !ok {
		m.log().Warn().Str("policy", typeName(p)).Msg("policy cannot be held weakly; cleared")
		m.policy.Store(nil)
		return
	}
	m.policy.Store(&ref)
}

// Policy returns the current policy, if it is set and still alive.
func (m *StateMachine[S, E]) Policy() (Policy[S, E], bool) {
	ref := m.policy.Load()
	if ref == nil {
		return nil, false
	}
	return ref.Value()
}

// FireEvent offers event to the policy and, if it names a next state,
// performs the transition: WillTransition, commit, DidTransition.
//
// Rejected events, a missing or collected policy, a closed queue and
// re-entrant calls from the machine's own hooks are all silently absorbed.
// A call is re-entrant when it comes from the goroutine running this
// machine's transition, or carries the ctx handed to its hooks.
func (m *StateMachine[S, E]) FireEvent(ctx context.Context, event E) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Value(firingKey{m}) != nil || m.firing.Load() == goid.Get() {
		m.log().Debug().Interface("event", event).Msg("re-entrant event dropped")
		return
	}
	if m.queue == nil {
		m.fire(ctx, event)
		return
	}
	err := m.queue.Sync(ctx, func(ctx context.Context) {
		m.fire(ctx, event)
	})
	if err != nil {
		m.log().Warn().Err(err).Interface("event", event).Msg("event dropped")
	}
}

// fire runs one full transition step on the calling goroutine.
func (m *StateMachine[S, E]) fire(ctx context.Context, event E) {
	policy, ok := m.Policy()
	if !ok {
		m.log().Debug().Interface("event", event).Msg("no policy; event ignored")
		return
	}

	m.firing.Store(goid.Get())
	defer m.firing.Store(0)

	ctx = context.WithValue(ctx, firingKey{m}, true)
	from := m.State()
	to, ok := policy.Next(ctx, from, event)
	if !ok {
		m.log().Trace().Interface("state", from).Interface("event", event).Msg("no transition")
		return
	}

	policy.WillTransition(ctx, from, to, event)
	m.mu.Lock()
	m.state = to
	m.mu.Unlock()
	policy.DidTransition(ctx, from, to, event)

	m.log().Trace().
		Interface("from", from).
		Interface("to", to).
		Interface("event", event).
		Msg("transition")
}
