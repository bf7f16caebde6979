// Package opt provides a comparable optional value.
//
// Value is used wherever a field may be legitimately absent (a column that only
// instruction-level records carry, a directory the debug info may omit). Because
// Value is comparable when T is, structs built from it keep working as map keys.
package opt

import "cmp"

// Value holds either a T or nothing. The zero Value is None.
type Value[T comparable] struct {
	v  T
	ok bool
}

// Some wraps v.
func Some[T comparable](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an empty Value.
func None[T comparable]() Value[T] {
	return Value[T]{}
}

// FromPair is a convenience for the (value, ok) idiom.
func FromPair[T comparable](v T, ok bool) Value[T] {
	if !ok {
		return Value[T]{}
	}
	return Value[T]{v: v, ok: true}
}

// IsSome reports whether a value is present.
func (o Value[T]) IsSome() bool { return o.ok }

// IsNone reports whether the value is absent.
func (o Value[T]) IsNone() bool { return !o.ok }

// Get returns the value and whether it is present.
func (o Value[T]) Get() (T, bool) { return o.v, o.ok }

// OrZero returns the value or T's zero value.
func (o Value[T]) OrZero() T { return o.v }

// Or returns the value or def when absent.
func (o Value[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Ptr returns a pointer to a copy of the value, or nil.
func (o Value[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.v
	return &v
}

// FromPtr is the inverse of Ptr.
func FromPtr[T comparable](p *T) Value[T] {
	if p == nil {
		return Value[T]{}
	}
	return Value[T]{v: *p, ok: true}
}

// Compare orders None before any Some; two Somes compare by their values.
func Compare[T cmp.Ordered](a, b Value[T]) int {
	switch {
	case !a.ok && !b.ok:
		return 0
	case !a.ok:
		return -1
	case !b.ok:
		return 1
	}
	return cmp.Compare(a.v, b.v)
}
