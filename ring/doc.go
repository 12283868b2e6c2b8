// SPDX-License-Identifier: EPL-2.0

// Package ring provides a fixed-capacity, wait-free single-producer /
// single-consumer queue.
//
// A Ring is the only channel between the control goroutine and the
// real-time audio callback. Exactly one goroutine may call Write and
// exactly one goroutine may call Read on a given Ring; the predicates
// CanWrite, CanRead and Len may be called from either side.
//
// Write never blocks and never allocates. When the ring is full the item
// is dropped, Write reports false and the Dropped counter is incremented so
// the overflow can be observed and logged later from a goroutine that is
// allowed to log.
//
//	r := ring.New[int](4)
//	if !r.Write(1) {
//	    // full: caller decides what to do
//	}
//	v, ok := r.Read()
package ring
