// SPDX-License-Identifier: EPL-2.0

// Package driver connects an engine to the outside world: a real-time
// audio output, MIDI devices, and an offline renderer that writes WAV
// files.
//
// Build with the headless tag to leave out the oto and rtmidi backends;
// Oto and OpenMIDI then return ErrUnavailable.
package driver
