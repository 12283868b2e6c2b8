// SPDX-License-Identifier: EPL-2.0

// Package engine is the audio side of jass.
//
// Engine.Process runs on the real-time audio goroutine. It drains the
// command channel, acknowledges every command, and renders the installed
// generators while dispatching the buffer's MIDI events at their frame
// offsets. It never blocks, allocates, locks or disposes of anything; all
// values it sees are kept alive by the control side until the command that
// replaced them has been acknowledged.
//
// Generators play one mono Sample through a bank of voices. Each voice runs
// a linear ADSR amplitude envelope and a filter envelope of the same shape.
package engine
