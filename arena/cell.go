// SPDX-License-Identifier: EPL-2.0

package arena

import "sync/atomic"

// Releaser is anything holding a reference that can be given back.
type Releaser interface {
	Release()
}

// Cell is a reference-counted holder of an immutable value.
type Cell[T any] struct {
	value    T
	refs     atomic.Int32
	onDrop   func(T)
	disposed atomic.Bool
}

// Acquire wraps value in a new cell registered with a. The caller owns the
// single initial reference. dispose, when not nil, runs during a Sweep once
// the count has dropped to zero.
func Acquire[T any](a *Arena, value T, dispose func(T)) *Cell[T] {
	c := &Cell[T]{
		value:  value,
		onDrop: dispose,
	}
	c.refs.Store(1)
	a.register(c)
	return c
}

// Value returns the wrapped value.
func (c *Cell[T]) Value() T {
	return c.value
}

// Retain adds a reference and returns c for chaining.
func (c *Cell[T]) Retain() *Cell[T] {
	if c.refs.Add(1) <= 1 {
		panic("arena: retain of a released cell")
	}
	return c
}

// TryRetain adds a reference only if c still has one. It reports false for
// a cell that is waiting to be swept.
func (c *Cell[T]) TryRetain() bool {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return false
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference. It never disposes the value itself.
func (c *Cell[T]) Release() {
	if c.refs.Add(-1) < 0 {
		panic("arena: reference count below zero")
	}
}

// Refs returns the current reference count.
func (c *Cell[T]) Refs() int32 {
	return c.refs.Load()
}

// Disposed reports whether a sweep has disposed the value.
func (c *Cell[T]) Disposed() bool {
	return c.disposed.Load()
}

func (c *Cell[T]) dispose() {
	if !c.disposed.CompareAndSwap(false, true) {
		return
	}
	if c.onDrop != nil {
		c.onDrop(c.value)
	}

	var zero T
	c.value = zero
}
