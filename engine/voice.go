// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/jass/arena"

// Voice is one playing instance of a generator's sample.
type Voice struct {
	Note        uint8
	Velocity    uint8
	NoteOnFrame uint64
	// Pos is the next frame of the sample to play.
	Pos int

	Amp    Envelope
	Filter Envelope
}

// Active reports whether the voice is producing sound.
func (v *Voice) Active() bool {
	return v.Amp.Stage != StageIdle
}

// trigger cuts whatever the voice was playing and starts it over.
func (v *Voice) trigger(note, velocity uint8, frame uint64, start int) {
	v.Note = note
	v.Velocity = velocity
	v.NoteOnFrame = frame
	v.Pos = start
	v.Amp.Trigger()
	v.Filter.Trigger()
}

func (v *Voice) release() {
	v.Amp.Release()
	v.Filter.Release()
}

func (v *Voice) stop() {
	v.Amp.Stop()
	v.Filter.Stop()
}

// AcquireVoices allocates a bank of n idle voices in a new cell. n is at
// least one.
func AcquireVoices(a *arena.Arena, n int) *arena.Cell[[]Voice] {
	return arena.Acquire(a, make([]Voice, max(n, 1)), nil)
}

// pickVoice chooses the slot for a new note: the first idle voice, else the
// oldest held voice, else the oldest voice.
func pickVoice(bank []Voice) *Voice {
	var oldestHeld, oldest *Voice
	for i := range bank {
		v := &bank[i]
		if !v.Active() {
			return v
		}
		if v.Amp.Held() && (oldestHeld == nil || v.NoteOnFrame < oldestHeld.NoteOnFrame) {
			oldestHeld = v
		}
		if oldest == nil || v.NoteOnFrame < oldest.NoteOnFrame {
			oldest = v
		}
	}
	if oldestHeld != nil {
		return oldestHeld
	}
	return oldest
}
