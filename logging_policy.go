package constructs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LoggingPolicy wraps a Policy and logs each decision and transition.
//
// The wrapper holds inner strongly. A machine holds the wrapper weakly, so
// it is the wrapper that must be kept reachable.
type LoggingPolicy[S, E any] struct {
	inner  Policy[S, E]
	logger zerolog.Logger
}

// NewLoggingPolicy creates a LoggingPolicy wrapping inner.
func NewLoggingPolicy[S, E any](inner Policy[S, E], logger zerolog.Logger) *LoggingPolicy[S, E] {
	return &LoggingPolicy[S, E]{inner: inner, logger: logger}
}

// Next logs the decision of the inner policy.
func (p *LoggingPolicy[S, E]) Next(ctx context.Context, state S, event E) (S, bool) {
	start := time.Now()
	next, ok := p.inner.Next(ctx, state, event)
	p.logger.Debug().
		Interface("state", state).
		Interface("event", event).
		Interface("next", next).
		Bool("accepted", ok).
		Dur("took", time.Since(start)).
		Msg("transition decided")
	return next, ok
}

func (p *LoggingPolicy[S, E]) WillTransition(ctx context.Context, from, to S, event E) {
	p.inner.WillTransition(ctx, from, to, event)
}

// DidTransition delegates, then logs the committed transition.
func (p *LoggingPolicy[S, E]) DidTransition(ctx context.Context, from, to S, event E) {
	p.inner.DidTransition(ctx, from, to, event)
	p.logger.Info().
		Interface("from", from).
		Interface("to", to).
		Interface("event", event).
		Msg("transitioned")
}
