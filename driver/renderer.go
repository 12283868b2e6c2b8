// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"encoding/binary"
	"math"

	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/midi"
)

// BytesPerFrame is the size of one interleaved stereo float32 frame.
const BytesPerFrame = 2 * 4

// Renderer runs an engine in fixed-size blocks and serves the result as
// interleaved little-endian float32 stereo. Requests need not line up with
// blocks; what is left of a block is served first by the next call.
type Renderer struct {
	engine *engine.Engine
	input  *MIDIInput
	events *midi.Buffer

	out0, out1 []float32
	next       int
}

// NewRenderer returns a renderer processing blocks of frames frames with
// room for events MIDI events each. in may be nil.
func NewRenderer(e *engine.Engine, in *MIDIInput, frames, events int) *Renderer {
	frames = max(frames, 1)
	return &Renderer{
		engine: e,
		input:  in,
		events: midi.NewBuffer(max(events, 1)),
		out0:   make([]float32, frames),
		out1:   make([]float32, frames),
		next:   frames,
	}
}

// Fill writes whole frames into p and returns the number of bytes written.
// Trailing bytes that do not make a frame are zeroed. It does not allocate.
func (r *Renderer) Fill(p []byte) int {
	n := len(p) / BytesPerFrame * BytesPerFrame
	for off := 0; off < n; off += BytesPerFrame {
		if r.next == len(r.out0) {
			r.block()
		}
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(r.out0[r.next]))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(r.out1[r.next]))
		r.next++
	}
	clear(p[n:])
	return n
}

func (r *Renderer) block() {
	r.events.Reset()
	if r.input != nil {
		r.input.Drain(r.events)
	}
	r.engine.Process(r.out0, r.out1, r.events)
	r.next = 0
}
