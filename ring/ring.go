// SPDX-License-Identifier: EPL-2.0

package ring

import "sync/atomic"

// Ring is a lock-free SPSC FIFO of T.
//
// head and tail sit on separate cache lines so the producer and consumer
// do not false-share.
type Ring[T any] struct {
	_    [64]byte
	head atomic.Uint64 // next slot to read, advanced by the consumer only
	_    [56]byte
	tail atomic.Uint64 // next slot to write, advanced by the producer only
	_    [56]byte

	mask    uint64
	buf     []T
	dropped atomic.Uint64
}

// New returns a ring holding at least capacity items. The capacity is
// rounded up to the next power of two.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}

	size := 1
	for size < capacity {
		size <<= 1
	}

	return &Ring[T]{
		mask: uint64(size - 1),
		buf:  make([]T, size),
	}
}

// Cap returns the number of slots.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Len returns the number of items waiting to be read.
func (r *Ring[T]) Len() int {
	// head first: tail can only have moved forward since.
	h := r.head.Load()
	t := r.tail.Load()
	return int(t - h)
}

// CanWrite reports whether a Write would succeed right now.
func (r *Ring[T]) CanWrite() bool {
	return r.Len() < len(r.buf)
}

// CanRead reports whether a Read would return an item right now.
func (r *Ring[T]) CanRead() bool {
	return r.Len() > 0
}

// Write appends v. It returns false and drops v when the ring is full.
func (r *Ring[T]) Write(v T) bool {
	t := r.tail.Load()
	if t-r.head.Load() >= uint64(len(r.buf)) {
		r.dropped.Add(1)
		return false
	}

	r.buf[t&r.mask] = v
	r.tail.Store(t + 1)
	return true
}

// Read removes and returns the oldest item. ok is false when the ring is
// empty.
func (r *Ring[T]) Read() (v T, ok bool) {
	h := r.head.Load()
	if h == r.tail.Load() {
		return v, false
	}

	idx := h & r.mask
	v = r.buf[idx]

	var zero T
	r.buf[idx] = zero // don't pin whatever the slot pointed at
	r.head.Store(h + 1)
	return v, true
}

// Dropped returns the number of writes rejected because the ring was full.
func (r *Ring[T]) Dropped() uint64 {
	return r.dropped.Load()
}
