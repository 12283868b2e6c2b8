// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"github.com/ik5/jass/midi"
	"github.com/ik5/jass/ring"
)

// MIDIInput queues messages from one listener goroutine for the audio
// callback.
type MIDIInput struct {
	queue *ring.Ring[midi.Event]
}

// NewMIDIInput returns a queue of at least capacity events.
func NewMIDIInput(capacity int) *MIDIInput {
	return &MIDIInput{queue: ring.New[midi.Event](capacity)}
}

// Feed queues msg. Only channel messages are kept; it reports false when
// msg was discarded or the queue was full.
func (m *MIDIInput) Feed(msg []byte) bool {
	if len(msg) == 0 || len(msg) > midi.MaxMessageLen {
		return false
	}
	return m.queue.Write(midi.NewEvent(0, msg))
}

// Drain moves queued events into buf until buf is full. Events take effect
// at the start of the buffer being rendered.
func (m *MIDIInput) Drain(buf *midi.Buffer) {
	for buf.Len() < buf.Cap() {
		ev, ok := m.queue.Read()
		if !ok {
			return
		}
		buf.Add(ev)
	}
}

// Dropped returns the number of events lost to a full queue.
func (m *MIDIInput) Dropped() uint64 {
	return m.queue.Dropped()
}
