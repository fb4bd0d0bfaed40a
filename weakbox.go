package constructs

import "github.com/comalice/constructs/internal/weakref"

// WeakBox holds a weak reference to a pointer-shaped value, for keeping
// non-owning references in slices and maps.
type WeakBox[T any] struct {
	ref weakref.Ref[T]
}

// NewWeakBox boxes v. If v cannot be held weakly (not a pointer, or a
// pointer to a tiny pointer-free type) the box is empty from the start.
func NewWeakBox[T any](v T) *WeakBox[T] {
	ref, _ := weakref.Make(v)
	return &WeakBox[T]{ref: ref}
}

// Value returns the boxed value while it is alive.
func (b *WeakBox[T]) Value() (T, bool) {
	return b.ref.Value()
}
