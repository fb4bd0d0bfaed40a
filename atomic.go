package constructs

import "sync"

// Atomic provides thread-safe access to a single value.
// Reads share a read lock; Set and Mutate are exclusive.
type Atomic[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewAtomic creates an Atomic holding v.
func NewAtomic[T any](v T) *Atomic[T] {
	return &Atomic[T]{value: v}
}

// Load returns the current value.
func (a *Atomic[T]) Load() T {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

// Store replaces the value.
func (a *Atomic[T]) Store(v T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = v
}

// Set replaces the value with the result of fn, computed under the lock,
// and returns it.
func (a *Atomic[T]) Set(fn func() T) T {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = fn()
	return a.value
}

// Mutate applies fn to the value in place under the lock.
func (a *Atomic[T]) Mutate(fn func(*T)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.value)
}
