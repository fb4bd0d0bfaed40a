// Package weakref provides identity-keyed weak references to values of any
// static type whose dynamic value is a non-nil pointer, including values held
// in interface types.
//
// A Ref does not keep its target alive. Once the garbage collector finds the
// target unreachable, Value reports false. Refs made from the same pointer
// share a Key, and a Key stays unique after its target is gone, so it can
// index a map of live and stale entries alike.
package weakref

import (
	"reflect"
	"unsafe"
	"weak"
)

// Key identifies the object a Ref points at.
type Key = weak.Pointer[byte]

// Ref is a weak reference to a value of static type T.
type Ref[T any] struct {
	ptr weak.Pointer[byte]
	typ reflect.Type
}

// tinySize mirrors the runtime's tiny allocator: pointer-free objects
// smaller than this are packed into shared 16-byte blocks, and a weak
// pointer into such a block only dies with every object in it.
const tinySize = 16

// Make returns a weak reference to v. It reports false when v has no
// usable identity: nil, not a pointer, a pointer to a zero-size type (those
// may share an address with unrelated values), or a pointer to a
// pointer-free type smaller than 16 bytes (see Collectable).
func Make[T any](v T) (Ref[T], bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Ref[T]{}, false
	}
	if !Collectable(rv.Type().Elem()) {
		return Ref[T]{}, false
	}
	p := (*byte)(rv.UnsafePointer())
	return Ref[T]{ptr: weak.Make(p), typ: rv.Type()}, true
}

// KeyOf returns the identity key v would be stored under, without keeping a
// reference. ok is false when v has no identity (see Make).
func KeyOf[T any](v T) (Key, bool) {
	r, ok := Make(v)
	return r.ptr, ok
}

// Key returns the identity of the referenced object.
func (r Ref[T]) Key() Key {
	return r.ptr
}

// Value resolves the reference. ok is false for the zero Ref and for a Ref
// whose target has been collected.
func (r Ref[T]) Value() (T, bool) {
	var zero T
	if r.typ == nil {
		return zero, false
	}
	p := r.ptr.Value()
	if p == nil {
		return zero, false
	}
	v, ok := reflect.NewAt(r.typ.Elem(), unsafe.Pointer(p)).Interface().(T)
	return v, ok
}

// Alive reports whether the target is still reachable.
func (r Ref[T]) Alive() bool {
	return r.typ != nil && r.ptr.Value() != nil
}

// Collectable reports whether a weak pointer to a value of type t is
// reliably cleared once that value becomes unreachable. Zero-size types and
// small pointer-free types fail: the runtime may place them at shared
// addresses or in shared blocks. Give such types a pointer field or pad
// them to 16 bytes.
func Collectable(t reflect.Type) bool {
	if t.Size() == 0 {
		return false
	}
	return t.Size() >= tinySize || hasPointers(t)
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
