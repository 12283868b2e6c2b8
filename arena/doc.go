// SPDX-License-Identifier: EPL-2.0

// Package arena owns the lifetime of values shared between the control
// goroutine and the real-time audio callback.
//
// Every shared value is wrapped in a reference-counted Cell. Releasing the
// last reference never disposes the value on the spot: the cell only becomes
// a candidate, and a later Sweep (driven by a low-frequency ticker on the
// control side) runs the dispose hook. The audio callback never touches a
// reference count; the control side keeps its reference to anything the
// audio side may still be reading until the replacing command has been
// acknowledged, then hands it back with MarkForCleanup.
//
//	a := arena.New()
//	c := arena.Acquire(a, value, func(v T) { ... })
//	...
//	a.MarkForCleanup(c) // superseded and acknowledged
//	a.Sweep()           // dispose runs here, off the real-time path
package arena
