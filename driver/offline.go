// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"io"
	"slices"

	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/formats/wav"
	"github.com/ik5/jass/midi"
	"github.com/ik5/jass/utils"
)

// Timed is a MIDI message at an absolute frame.
type Timed struct {
	Frame   int
	Message []byte
}

// Offline renders an engine faster than real time, in the same block size
// a live output would use.
type Offline struct {
	engine *engine.Engine
	frames int
	events *midi.Buffer

	// BeforeBlock, when set, is called before every block on the rendering
	// goroutine, e.g. to read acknowledgements.
	BeforeBlock func()
}

// NewOffline returns a renderer for e with blocks of frames frames holding
// at most events MIDI events.
func NewOffline(e *engine.Engine, frames, events int) *Offline {
	return &Offline{
		engine: e,
		frames: max(frames, 1),
		events: midi.NewBuffer(max(events, 1)),
	}
}

// Render runs the engine for n frames, delivering msgs at their frames, and
// returns the left and right channels. Messages past the end are ignored.
func (o *Offline) Render(n int, msgs []Timed) (left, right []float32) {
	msgs = slices.Clone(msgs)
	slices.SortStableFunc(msgs, func(a, b Timed) int { return a.Frame - b.Frame })

	left = make([]float32, n)
	right = make([]float32, n)
	next := 0
	for start := 0; start < n; start += o.frames {
		end := min(start+o.frames, n)

		o.events.Reset()
		for next < len(msgs) && msgs[next].Frame < end {
			m := msgs[next]
			next++
			if m.Frame < start {
				continue
			}
			o.events.AddMessage(int32(m.Frame-start), m.Message)
		}

		if o.BeforeBlock != nil {
			o.BeforeBlock()
		}
		o.engine.Process(left[start:end], right[start:end], o.events)
	}
	return left, right
}

// WriteWAV writes left and right as a 16-bit stereo WAV file.
func WriteWAV(w io.WriteSeeker, rate int, left, right []float32) error {
	samples := utils.InterleaveInt16(nil, left, right)
	if err := wav.WriteWAV16(w, rate, 2, samples); err != nil {
		return errgo.Notef(err, "writing rendered audio")
	}
	return nil
}
