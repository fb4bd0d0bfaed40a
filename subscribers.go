package constructs

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/comalice/constructs/internal/logging"
	"github.com/comalice/constructs/internal/weakref"
)

// Dispatcher runs a function, possibly later and elsewhere.
type Dispatcher interface {
	Async(fn func()) error
}

// Subscribers is a set of weakly held listeners of type T, keyed by pointer
// identity. Subscribers that get garbage collected drop out on their own, so
// unsubscribing is only needed for prompt removal.
//
// T is usually an interface type; the dynamic value of every subscriber must
// be a non-nil pointer. Pointees that are zero-size, or smaller than 16
// bytes and free of pointers, are rejected: the runtime packs those into
// shared blocks and would never report them collected. Safe for concurrent
// use.
type Subscribers[T any] struct {
	mu         sync.Mutex
	entries    map[weakref.Key]weakref.Ref[T]
	dispatcher Dispatcher
	logger     *zerolog.Logger
	lazy       *logging.Lazy
}

// NewSubscribers creates an empty registry.
func NewSubscribers[T any](opts ...SubscribersOption) *Subscribers[T] {
	var o subscribersOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Subscribers[T]{
		entries:    make(map[weakref.Key]weakref.Ref[T]),
		dispatcher: o.dispatcher,
		logger:     o.logger,
	}
	if s.logger == nil {
		s.lazy = logging.NewLazy("subscribers")
	}
	return s
}

func (s *Subscribers[T]) log() *zerolog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return s.lazy.Logger()
}

// Add registers sub. Adding a subscriber that is already registered is a
// no-op. Values without pointer identity are ignored.
func (s *Subscribers[T]) Add(sub T) {
	ref, ok := weakref.Make(sub)
	if !ok {
		s.log().Warn().Str("subscriber", typeName(sub)).Msg("subscriber has no collectable pointer identity; ignored")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	if _, exists := s.entries[ref.Key()]; exists {
		return
	}
	s.entries[ref.Key()] = ref
}

// Remove unregisters sub. Removing an unknown subscriber is a no-op.
func (s *Subscribers[T]) Remove(sub T) {
	key, ok := weakref.KeyOf(sub)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	if ok {
		delete(s.entries, key)
	}
}

// Broadcast applies invocation to every live subscriber, inline or through
// the configured Dispatcher, in no particular order. No lock is held while
// invocation runs, so it may call back into the registry.
func (s *Subscribers[T]) Broadcast(invocation func(T)) {
	live := s.snapshot()

	for _, sub := range live {
		if s.dispatcher == nil {
			invocation(sub)
			continue
		}
		sub := sub
		if err := s.dispatcher.Async(func() { invocation(sub) }); err != nil {
			s.log().Warn().Err(err).Msg("broadcast delivery dropped")
		}
	}
}

// Len returns the number of live subscribers.
func (s *Subscribers[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.entries)
}

// snapshot prunes and returns strong references to the live subscribers.
func (s *Subscribers[T]) snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	live := make([]T, 0, len(s.entries))
	for _, ref := range s.entries {
		// The target may be collected between prune and here.
		if sub, ok := ref.Value(); ok {
			live = append(live, sub)
		}
	}
	return live
}

// pruneLocked removes entries whose subscriber has been collected.
// Caller must hold s.mu.
func (s *Subscribers[T]) pruneLocked() {
	for key, ref := range s.entries {
		if !ref.Alive() {
			delete(s.entries, key)
			s.log().Trace().Msg("stale subscriber pruned")
		}
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
