// SPDX-License-Identifier: EPL-2.0

// Package control is the control side of a jass engine.
//
// A Controller is the only writer of the engine's command channel and the
// only reader of its acknowledgement channel. It keeps a mirror of what it
// has published, so that edits can be validated and built without reading
// state the audio goroutine owns.
//
// Values replaced by a command are released to the arena only when every
// command written so far has been acknowledged. A blocking command also
// disables further edits until then; actions queued with Defer run at the
// same point, in the order they were queued.
package control
