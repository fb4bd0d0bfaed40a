package constructs

import (
	"github.com/rs/zerolog"

	"github.com/comalice/constructs/dispatch"
)

type machineOptions struct {
	queue  *dispatch.Queue
	logger *zerolog.Logger
}

// Option configures a StateMachine via functional options pattern.
type Option func(*machineOptions)

// OnQueue makes every transition run on q. FireEvent called from anywhere
// else hops onto q and waits for the transition to finish.
func OnQueue(q *dispatch.Queue) Option {
	return func(o *machineOptions) {
		o.queue = q
	}
}

// WithLogger configures the StateMachine's logger. Without it the machine
// logs through the global zerolog logger as it stands after the latest
// logging setup.
func WithLogger(l zerolog.Logger) Option {
	return func(o *machineOptions) {
		o.logger = &l
	}
}

type subscribersOptions struct {
	dispatcher Dispatcher
	logger     *zerolog.Logger
}

// SubscribersOption configures a Subscribers registry.
type SubscribersOption func(*subscribersOptions)

// WithDispatcher makes Broadcast submit each invocation to d instead of
// running it inline. A *dispatch.Queue, dispatch.Go or dispatch.Inline fit.
func WithDispatcher(d Dispatcher) SubscribersOption {
	return func(o *subscribersOptions) {
		o.dispatcher = d
	}
}

// WithSubscribersLogger configures the registry's logger. Without it the
// registry follows the global logger like a StateMachine does.
func WithSubscribersLogger(l zerolog.Logger) SubscribersOption {
	return func(o *subscribersOptions) {
		o.logger = &l
	}
}
