// Package testutil provides a recording Policy for exercising state
// machines in tests.
package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/comalice/constructs"
)

// Step is one observed hook call.
type Step[S, E any] struct {
	From  S
	To    S
	Event E
}

// Recorder is a Policy that delegates decisions to Decide and records every
// hook call. It also notices when the hooks of two transitions interleave.
type Recorder[S, E any] struct {
	Decide func(state S, event E) (S, bool)

	// OnWill and OnDid, when set, run inside the respective hook.
	OnWill func(ctx context.Context, from, to S, event E)
	OnDid  func(ctx context.Context, from, to S, event E)

	mu       sync.Mutex
	will     []Step[S, E]
	did      []Step[S, E]
	active   atomic.Int32
	overlaps atomic.Int32
}

var _ constructs.Policy[string, string] = (*Recorder[string, string])(nil)

// Graph returns a Decide function for a fixed directed graph:
// graph[state][event] is the next state.
func Graph[S, E comparable](graph map[S]map[E]S) func(S, E) (S, bool) {
	return func(state S, event E) (S, bool) {
		next, ok := graph[state][event]
		return next, ok
	}
}

func (r *Recorder[S, E]) Next(_ context.Context, state S, event E) (S, bool) {
	if r.Decide == nil {
		var zero S
		return zero, false
	}
	return r.Decide(state, event)
}

func (r *Recorder[S, E]) WillTransition(ctx context.Context, from, to S, event E) {
	if r.active.Add(1) > 1 {
		r.overlaps.Add(1)
	}
	r.mu.Lock()
	r.will = append(r.will, Step[S, E]{From: from, To: to, Event: event})
	r.mu.Unlock()
	if r.OnWill != nil {
		r.OnWill(ctx, from, to, event)
	}
}

func (r *Recorder[S, E]) DidTransition(ctx context.Context, from, to S, event E) {
	r.mu.Lock()
	r.did = append(r.did, Step[S, E]{From: from, To: to, Event: event})
	r.mu.Unlock()
	if r.OnDid != nil {
		r.OnDid(ctx, from, to, event)
	}
	r.active.Add(-1)
}

// Will returns a copy of the recorded pre-transition calls.
func (r *Recorder[S, E]) Will() []Step[S, E] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step[S, E](nil), r.will...)
}

// Did returns a copy of the recorded post-transition calls.
func (r *Recorder[S, E]) Did() []Step[S, E] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step[S, E](nil), r.did...)
}

// Overlaps counts transitions whose hooks started before the previous
// transition's DidTransition returned.
func (r *Recorder[S, E]) Overlaps() int {
	return int(r.overlaps.Load())
}
