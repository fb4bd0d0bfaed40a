package constructs

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a Clamped is created with an initial
// value outside its bounds, or with inverted bounds.
var ErrOutOfBounds = errors.New("value out of bounds")

// Clamped is a value that always stays within [Min, Max]. Values set
// outside the range are pinned to the nearest bound.
type Clamped[T cmp.Ordered] struct {
	value T
	lo    T
	hi    T
}

// NewClamped creates a Clamped. initial must already lie within [lo, hi].
func NewClamped[T cmp.Ordered](initial, lo, hi T) (*Clamped[T], error) {
	if cmp.Compare(lo, hi) > 0 {
		return nil, fmt.Errorf("bounds [%v, %v]: %w", lo, hi, ErrOutOfBounds)
	}
	if cmp.Compare(initial, lo) < 0 || cmp.Compare(initial, hi) > 0 {
		return nil, fmt.Errorf("initial %v not in [%v, %v]: %w", initial, lo, hi, ErrOutOfBounds)
	}
	return &Clamped[T]{value: initial, lo: lo, hi: hi}, nil
}

// Get returns the current value.
func (c *Clamped[T]) Get() T { return c.value }

// Set stores v pinned to the bounds and returns the stored value.
func (c *Clamped[T]) Set(v T) T {
	c.value = min(max(v, c.lo), c.hi)
	return c.value
}

func (c *Clamped[T]) Min() T { return c.lo }
func (c *Clamped[T]) Max() T { return c.hi }
