// SPDX-License-Identifier: EPL-2.0

package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Kind classifies a decoded event.
type Kind uint8

const (
	// KindOther is any message the engine does not act on.
	KindOther Kind = iota
	// KindNoteOn is a note-on with a non-zero velocity.
	KindNoteOn
	// KindNoteOff is a note-off, or a note-on with velocity zero.
	KindNoteOff
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	default:
		return "Other"
	}
}

// MaxMessageLen is the longest channel message kept in an Event.
const MaxMessageLen = 3

// Event is one raw MIDI channel message at a frame offset.
type Event struct {
	Offset int32
	Data   [MaxMessageLen]byte
	Len    uint8
}

// NewEvent copies msg into an Event. Messages longer than MaxMessageLen
// (sysex and friends) are truncated and will decode as KindOther.
func NewEvent(offset int32, msg []byte) Event {
	e := Event{Offset: offset}
	e.Len = uint8(copy(e.Data[:], msg))
	return e
}

// Message returns the raw bytes as a gomidi message.
func (e *Event) Message() gomidi.Message {
	return gomidi.Message(e.Data[:e.Len])
}

// String is for logs and test failures.
func (e Event) String() string {
	n := Decode(&e)
	return fmt.Sprintf("%s{ch:%d, note:%d, vel:%d, offset:%d}", n.Kind, n.Channel, n.Key, n.Velocity, e.Offset)
}

// Note is the decoded form of a note event.
type Note struct {
	Kind     Kind
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// Decode extracts note-on / note-off information from e.
func Decode(e *Event) Note {
	var n Note
	msg := e.Message()
	switch {
	case msg.GetNoteStart(&n.Channel, &n.Key, &n.Velocity):
		n.Kind = KindNoteOn
	case msg.GetNoteEnd(&n.Channel, &n.Key):
		n.Kind = KindNoteOff
		n.Velocity = 0
	}
	return n
}

// NoteOn builds a note-on event.
func NoteOn(offset int32, channel, key, velocity uint8) Event {
	return NewEvent(offset, gomidi.NoteOn(channel, key, velocity))
}

// NoteOff builds a note-off event.
func NoteOff(offset int32, channel, key uint8) Event {
	return NewEvent(offset, gomidi.NoteOff(channel, key))
}
