// SPDX-License-Identifier: EPL-2.0

// Package midi holds the MIDI input of one audio buffer.
//
// A Buffer is allocated once by the audio driver and refilled before every
// callback; events are plain values carrying the raw message bytes and the
// frame offset inside the buffer. Decoding of note-on / note-off is done with
// gitlab.com/gomidi/midi/v2 and never allocates.
package midi
