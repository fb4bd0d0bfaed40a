package constructs

import "context"

// Policy decides the transitions of a StateMachine and is notified around
// each one it accepts.
//
// Next returns the state to move to and true, or false to reject the event.
// Returning the current state is a loopback: it is still a transition and
// both hooks fire. The ctx handed to all three methods is tagged with the
// firing machine; passing it back into that machine's FireEvent is dropped.
type Policy[S, E any] interface {
	Next(ctx context.Context, state S, event E) (S, bool)
	WillTransition(ctx context.Context, from, to S, event E)
	DidTransition(ctx context.Context, from, to S, event E)
}

// Funcs adapts plain functions to a Policy. A nil NextFunc rejects every
// event; nil hooks do nothing.
//
// The machine holds its policy weakly, so keep the *Funcs reachable (for
// instance with a Retainer) for as long as it should apply.
type Funcs[S, E any] struct {
	NextFunc func(ctx context.Context, state S, event E) (S, bool)
	WillFunc func(ctx context.Context, from, to S, event E)
	DidFunc  func(ctx context.Context, from, to S, event E)
}

func (f *Funcs[S, E]) Next(ctx context.Context, state S, event E) (S, bool) {
	if f.NextFunc == nil {
		var zero S
		return zero, false
	}
	return f.NextFunc(ctx, state, event)
}

func (f *Funcs[S, E]) WillTransition(ctx context.Context, from, to S, event E) {
	if f.WillFunc != nil {
		f.WillFunc(ctx, from, to, event)
	}
}

func (f *Funcs[S, E]) DidTransition(ctx context.Context, from, to S, event E) {
	if f.DidFunc != nil {
		f.DidFunc(ctx, from, to, event)
	}
}
