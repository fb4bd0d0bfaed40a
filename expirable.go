package constructs

import (
	"sync"
	"time"
)

// Expirable holds a value that reads as absent once its time-to-live has
// elapsed. Every Set restarts the clock. Safe for concurrent use.
type Expirable[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	value     T
	expiresAt time.Time
}

// ExpirableOption configures an Expirable.
type ExpirableOption func(*expirableOptions)

type expirableOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ExpirableOption {
	return func(o *expirableOptions) {
		o.now = now
	}
}

// NewExpirable creates an empty Expirable whose values live for ttl.
func NewExpirable[T any](ttl time.Duration, opts ...ExpirableOption) *Expirable[T] {
	o := expirableOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Expirable[T]{ttl: ttl, now: o.now}
}

// Get returns the value unless it was never set, was cleared, or expired.
func (e *Expirable[T]) Get() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	if e.expiresAt.IsZero() || e.expiresAt.Before(e.now()) {
		return zero, false
	}
	return e.value, true
}

// Set stores v and restarts the time-to-live.
func (e *Expirable[T]) Set(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
	e.expiresAt = e.now().Add(e.ttl)
}

// Clear drops the value immediately.
func (e *Expirable[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero T
	e.value = zero
	e.expiresAt = time.Time{}
}

// ExpiresAt returns when the current value expires; zero if unset.
func (e *Expirable[T]) ExpiresAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expiresAt
}
