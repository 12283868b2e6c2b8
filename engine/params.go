// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"

	"gopkg.in/errgo.v1"
)

// AuditChannel matches no MIDI channel. The auditor plays on it.
const AuditChannel = 16

// Params are the playback settings of a generator. Frame positions are
// offsets into the generator's sample; envelope times are in seconds.
type Params struct {
	SampleStart int
	SampleEnd   int
	Looping     bool
	LoopStart   int
	LoopEnd     int

	Gain    float64
	Channel int

	Note    int
	MinNote int
	MaxNote int

	MinVelocity    int
	MaxVelocity    int
	VelocityFactor float64

	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// DefaultParams covers a whole sample of frames frames, responding to every
// note and velocity on channel 0.
func DefaultParams(frames int) Params {
	return Params{
		SampleStart:    0,
		SampleEnd:      frames,
		LoopStart:      0,
		LoopEnd:        frames,
		Gain:           1,
		Note:           60,
		MinNote:        0,
		MaxNote:        127,
		MinVelocity:    0,
		MaxVelocity:    127,
		VelocityFactor: 1,
		Attack:         0.001,
		Decay:          0.1,
		Sustain:        1,
		Release:        0.1,
	}
}

// ADSR returns the envelope settings.
func (p *Params) ADSR() ADSR {
	return ADSR{Attack: p.Attack, Decay: p.Decay, Sustain: p.Sustain, Release: p.Release}
}

// Matches reports whether a note-on on channel with note and velocity
// should trigger the generator.
func (p *Params) Matches(channel, note, velocity uint8) bool {
	return int(channel) == p.Channel &&
		int(note) >= p.MinNote && int(note) <= p.MaxNote &&
		int(velocity) >= p.MinVelocity && int(velocity) <= p.MaxVelocity
}

// VelocityGain scales velocity by VelocityFactor: a factor of 0 ignores
// velocity, 1 makes the gain proportional to it.
func (p *Params) VelocityGain(velocity uint8) float64 {
	return (1 - p.VelocityFactor) + p.VelocityFactor*float64(velocity)/127
}

// Validate checks p against a sample of frames frames.
func (p *Params) Validate(frames int) error {
	invalid := func(f string, a ...any) error {
		return errgo.WithCausef(nil, ErrInvalidParams, f, a...)
	}

	switch {
	case p.Channel < 0 || p.Channel > AuditChannel:
		return invalid("channel %d outside [0, %d]", p.Channel, AuditChannel)
	case !midiRange(p.Note) || !midiRange(p.MinNote) || !midiRange(p.MaxNote):
		return invalid("notes must lie in [0, 127]")
	case p.MinNote > p.Note || p.Note > p.MaxNote:
		return invalid("note %d outside range [%d, %d]", p.Note, p.MinNote, p.MaxNote)
	case !midiRange(p.MinVelocity) || !midiRange(p.MaxVelocity):
		return invalid("velocities must lie in [0, 127]")
	case p.MinVelocity > p.MaxVelocity:
		return invalid("minimum velocity %d above maximum %d", p.MinVelocity, p.MaxVelocity)
	case p.SampleStart < 0 || p.SampleStart >= p.SampleEnd || p.SampleEnd > frames:
		return invalid("sample range [%d, %d) invalid for %d frames", p.SampleStart, p.SampleEnd, frames)
	case p.Looping && (p.LoopStart < p.SampleStart || p.LoopStart >= p.LoopEnd || p.LoopEnd > p.SampleEnd):
		return invalid("loop [%d, %d) not inside sample range [%d, %d)", p.LoopStart, p.LoopEnd, p.SampleStart, p.SampleEnd)
	case !nonNegative(p.Gain):
		return invalid("gain %v must be a non-negative number", p.Gain)
	case !unit(p.VelocityFactor):
		return invalid("velocity factor %v outside [0, 1]", p.VelocityFactor)
	case !nonNegative(p.Attack) || !nonNegative(p.Decay) || !nonNegative(p.Release):
		return invalid("envelope times must be non-negative")
	case !unit(p.Sustain):
		return invalid("sustain %v outside [0, 1]", p.Sustain)
	}
	return nil
}

func midiRange(v int) bool { return v >= 0 && v <= 127 }

func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

func unit(v float64) bool { return v >= 0 && v <= 1 }

// ParamID names one scalar field of Params.
type ParamID uint8

const (
	ParamSampleStart ParamID = iota
	ParamSampleEnd
	ParamLooping
	ParamLoopStart
	ParamLoopEnd
	ParamGain
	ParamChannel
	ParamNote
	ParamMinNote
	ParamMaxNote
	ParamMinVelocity
	ParamMaxVelocity
	ParamVelocityFactor
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease

	numParams
)

var paramNames = [numParams]string{
	ParamSampleStart:    "sample-start",
	ParamSampleEnd:      "sample-end",
	ParamLooping:        "looping",
	ParamLoopStart:      "loop-start",
	ParamLoopEnd:        "loop-end",
	ParamGain:           "gain",
	ParamChannel:        "channel",
	ParamNote:           "note",
	ParamMinNote:        "min-note",
	ParamMaxNote:        "max-note",
	ParamMinVelocity:    "min-velocity",
	ParamMaxVelocity:    "max-velocity",
	ParamVelocityFactor: "velocity-factor",
	ParamAttack:         "attack",
	ParamDecay:          "decay",
	ParamSustain:        "sustain",
	ParamRelease:        "release",
}

func (id ParamID) String() string {
	if id >= numParams {
		return "unknown"
	}
	return paramNames[id]
}

// ParseParamID returns the ParamID with the given name.
func ParseParamID(name string) (ParamID, error) {
	for id, n := range paramNames {
		if n == name {
			return ParamID(id), nil
		}
	}
	return 0, errgo.WithCausef(nil, ErrUnknownParam, "unknown parameter %q", name)
}

// Set stores v in the field named by id. Integer fields are rounded and
// Looping is true for any non-zero v. Unknown ids are ignored.
func (p *Params) Set(id ParamID, v float64) {
	i := int(math.Round(v))
	switch id {
	case ParamSampleStart:
		p.SampleStart = i
	case ParamSampleEnd:
		p.SampleEnd = i
	case ParamLooping:
		p.Looping = v != 0
	case ParamLoopStart:
		p.LoopStart = i
	case ParamLoopEnd:
		p.LoopEnd = i
	case ParamGain:
		p.Gain = v
	case ParamChannel:
		p.Channel = i
	case ParamNote:
		p.Note = i
	case ParamMinNote:
		p.MinNote = i
	case ParamMaxNote:
		p.MaxNote = i
	case ParamMinVelocity:
		p.MinVelocity = i
	case ParamMaxVelocity:
		p.MaxVelocity = i
	case ParamVelocityFactor:
		p.VelocityFactor = v
	case ParamAttack:
		p.Attack = v
	case ParamDecay:
		p.Decay = v
	case ParamSustain:
		p.Sustain = v
	case ParamRelease:
		p.Release = v
	}
}

// Get returns the field named by id as a float64.
func (p *Params) Get(id ParamID) float64 {
	switch id {
	case ParamSampleStart:
		return float64(p.SampleStart)
	case ParamSampleEnd:
		return float64(p.SampleEnd)
	case ParamLooping:
		if p.Looping {
			return 1
		}
		return 0
	case ParamLoopStart:
		return float64(p.LoopStart)
	case ParamLoopEnd:
		return float64(p.LoopEnd)
	case ParamGain:
		return p.Gain
	case ParamChannel:
		return float64(p.Channel)
	case ParamNote:
		return float64(p.Note)
	case ParamMinNote:
		return float64(p.MinNote)
	case ParamMaxNote:
		return float64(p.MaxNote)
	case ParamMinVelocity:
		return float64(p.MinVelocity)
	case ParamMaxVelocity:
		return float64(p.MaxVelocity)
	case ParamVelocityFactor:
		return p.VelocityFactor
	case ParamAttack:
		return p.Attack
	case ParamDecay:
		return p.Decay
	case ParamSustain:
		return p.Sustain
	case ParamRelease:
		return p.Release
	}
	return 0
}
