package constructs

import (
	"context"
	"sync"
	"sync/atomic"
)

// Transition is one committed state change.
type Transition[S, E any] struct {
	From  S
	To    S
	Event E
}

// TransitionListener receives committed transitions from a Subscribers
// registry fed by Announce.
type TransitionListener[S, E any] interface {
	OnTransition(Transition[S, E])
}

// Announce returns a post-transition hook that broadcasts every transition
// to subs. It fits Funcs.DidFunc and, for string machines, OnDidTransition.
func Announce[S, E any](subs *Subscribers[TransitionListener[S, E]]) func(ctx context.Context, from, to S, event E) {
	return func(_ context.Context, from, to S, event E) {
		tr := Transition[S, E]{From: from, To: to, Event: event}
		subs.Broadcast(func(l TransitionListener[S, E]) {
			l.OnTransition(tr)
		})
	}
}

// ChannelPublisher is a TransitionListener that forwards transitions to a
// channel. Sends never block: when the channel is full the transition is
// dropped and counted.
type ChannelPublisher[S, E any] struct {
	mu      sync.RWMutex
	ch      chan<- Transition[S, E]
	closed  bool
	dropped atomic.Int64
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher[S, E any](ch chan<- Transition[S, E]) *ChannelPublisher[S, E] {
	return &ChannelPublisher[S, E]{ch: ch}
}

func (p *ChannelPublisher[S, E]) OnTransition(tr Transition[S, E]) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- tr:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many transitions were dropped on a full channel.
func (p *ChannelPublisher[S, E]) Dropped() int64 {
	return p.dropped.Load()
}

// Close closes the output channel. Later transitions are ignored.
func (p *ChannelPublisher[S, E]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}
