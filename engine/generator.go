// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/sample"
)

// Generator plays one sample through a bank of voices.
//
// Once a generator has been published to an Engine its params and voice
// bank belong to the audio goroutine; the control side changes them only
// through commands.
type Generator struct {
	sample *arena.Cell[*sample.Sample]
	params Params
	voices *arena.Cell[[]Voice]
}

// Collection is the ordered set of generators an engine renders.
type Collection []*arena.Cell[*Generator]

// AcquireGenerator builds a generator in a new cell. The generator takes
// over one reference each to s and voices and gives them back when it is
// disposed.
func AcquireGenerator(a *arena.Arena, s *arena.Cell[*sample.Sample], p Params, voices *arena.Cell[[]Voice]) *arena.Cell[*Generator] {
	g := &Generator{
		sample: s,
		params: p,
		voices: voices,
	}
	return arena.Acquire(a, g, (*Generator).dispose)
}

// AcquireCollection wraps gens in a new cell. The collection takes over one
// reference to every generator in gens.
func AcquireCollection(a *arena.Arena, gens Collection) *arena.Cell[Collection] {
	return arena.Acquire(a, gens, func(gens Collection) {
		for _, g := range gens {
			g.Release()
		}
	})
}

func (g *Generator) dispose() {
	g.sample.Release()
	g.voices.Release()
}

// Sample returns the cell of the generator's sample. It never changes.
func (g *Generator) Sample() *arena.Cell[*sample.Sample] {
	return g.sample
}

// Params returns the parameters the audio side is using. Only call it from
// the goroutine running Engine.Process, or while nothing is processing.
func (g *Generator) Params() Params {
	return g.params
}

// Voices returns the current voice bank, with the same restriction as
// Params.
func (g *Generator) Voices() []Voice {
	return g.voices.Value()
}

// ActiveVoices counts the sounding voices, with the same restriction as
// Params.
func (g *Generator) ActiveVoices() int {
	n := 0
	for i := range g.voices.Value() {
		if g.voices.Value()[i].Active() {
			n++
		}
	}
	return n
}

func (g *Generator) noteOn(channel, note, velocity uint8, frame uint64) {
	if !g.params.Matches(channel, note, velocity) {
		return
	}
	if v := pickVoice(g.voices.Value()); v != nil {
		v.trigger(note, velocity, frame, g.params.SampleStart)
	}
}

func (g *Generator) noteOff(channel, note uint8) {
	if int(channel) != g.params.Channel {
		return
	}
	bank := g.voices.Value()
	for i := range bank {
		if bank[i].Note == note {
			bank[i].release()
		}
	}
}

func (g *Generator) allNotesOff() {
	bank := g.voices.Value()
	for i := range bank {
		bank[i].release()
	}
}

// audition starts voice 0 the way the auditor plays: note 64, velocity 64,
// on the channel no MIDI event matches.
func (g *Generator) audition(frame uint64) {
	g.params.Channel = AuditChannel
	bank := g.voices.Value()
	if len(bank) == 0 {
		return
	}
	bank[0].trigger(64, 64, frame, g.params.SampleStart)
}

// render adds the generator's active voices to out0 and out1, which have
// the same length.
func (g *Generator) render(out0, out1 []float32, rate float64) {
	data := g.sample.Value().Data
	bank := g.voices.Value()
	for i := range bank {
		if bank[i].Active() {
			g.renderVoice(&bank[i], data, out0, out1, rate)
		}
	}
}

func (g *Generator) renderVoice(v *Voice, data []float32, out0, out1 []float32, rate float64) {
	p := &g.params
	adsr := p.ADSR()
	gain := p.Gain * p.VelocityGain(v.Velocity)

	end := min(p.SampleEnd, len(data))
	loopEnd := min(p.LoopEnd, end)
	looping := p.Looping && p.LoopStart >= 0 && p.LoopStart < loopEnd

	for f := range out0 {
		if looping && v.Pos >= loopEnd {
			v.Pos = p.LoopStart
		}
		if v.Pos >= end || v.Pos < 0 {
			v.stop()
			return
		}

		amp := v.Amp.Next(adsr, rate)
		v.Filter.Next(adsr, rate)

		s := data[v.Pos] * float32(amp*gain)
		out0[f] += s
		out1[f] += s
		v.Pos++

		if !v.Active() {
			return
		}
	}
}
