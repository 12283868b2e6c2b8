// SPDX-License-Identifier: EPL-2.0

package midi

// Buffer is a fixed-capacity list of the events of one audio buffer.
// It is filled and consumed on the audio goroutine.
type Buffer struct {
	events  []Event
	n       int
	dropped uint64
}

// NewBuffer allocates room for capacity events.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{events: make([]Event, capacity)}
}

// Add appends e, dropping it when the buffer is full.
func (b *Buffer) Add(e Event) bool {
	if b.n == len(b.events) {
		b.dropped++
		return false
	}
	b.events[b.n] = e
	b.n++
	return true
}

// AddMessage appends a raw message at offset.
func (b *Buffer) AddMessage(offset int32, msg []byte) bool {
	return b.Add(NewEvent(offset, msg))
}

// Cap returns the number of events the buffer holds.
func (b *Buffer) Cap() int { return len(b.events) }

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() { b.n = 0 }

// Len returns the number of events.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return b.n
}

// At returns a pointer to the i-th event.
func (b *Buffer) At(i int) *Event { return &b.events[i] }

// Dropped returns how many events did not fit.
func (b *Buffer) Dropped() uint64 {
	if b == nil {
		return 0
	}
	return b.dropped
}

// Sort orders events by offset, keeping arrival order for equal offsets.
// Insertion sort: buffers are short and usually already ordered.
func (b *Buffer) Sort() {
	ev := b.events[:b.n]
	for i := 1; i < len(ev); i++ {
		e := ev[i]
		j := i - 1
		for j >= 0 && ev[j].Offset > e.Offset {
			ev[j+1] = ev[j]
			j--
		}
		ev[j+1] = e
	}
}
