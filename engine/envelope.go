// SPDX-License-Identifier: EPL-2.0

package engine

import "math"

// Stage is the position of an envelope in its life cycle.
type Stage uint8

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "idle"
	}
}

// ADSR holds envelope times in seconds and the sustain level.
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Envelope is a linear attack-decay-sustain-release generator. Its value
// always lies in [0, 1].
type Envelope struct {
	Stage Stage
	Value float64

	// from is the value at which the release started.
	from float64
}

// Trigger restarts the envelope from zero.
func (e *Envelope) Trigger() {
	e.Stage = StageAttack
	e.Value = 0
}

// Release moves a held envelope into its release stage.
func (e *Envelope) Release() {
	if !e.Held() {
		return
	}
	e.Stage = StageRelease
	e.from = e.Value
}

// Held reports whether the envelope is in attack, decay or sustain.
func (e *Envelope) Held() bool {
	return e.Stage == StageAttack || e.Stage == StageDecay || e.Stage == StageSustain
}

// Stop silences the envelope immediately.
func (e *Envelope) Stop() {
	*e = Envelope{}
}

// Next advances the envelope by one frame at rate frames per second and
// returns the new value. A stage with zero time completes within the frame.
func (e *Envelope) Next(a ADSR, rate float64) float64 {
	sustain := clamp01(a.Sustain)

	switch e.Stage {
	case StageAttack:
		e.Value += rampStep(1, a.Attack, rate)
		if e.Value < 1 {
			break
		}
		e.Value = 1
		e.Stage = StageDecay
		if a.Decay > 0 {
			break
		}
		fallthrough
	case StageDecay:
		e.Value -= rampStep(1-sustain, a.Decay, rate)
		if e.Value > sustain {
			break
		}
		e.Value = sustain
		e.Stage = StageSustain
	case StageSustain:
		e.Value = sustain
	case StageRelease:
		e.Value -= rampStep(e.from, a.Release, rate)
		if e.Value > 0 {
			break
		}
		e.Value = 0
		e.Stage = StageIdle
	default:
		e.Value = 0
	}

	e.Value = clamp01(e.Value)
	return e.Value
}

// rampStep is the per-frame change that covers distance in seconds. Zero or
// invalid times complete the ramp in one step.
func rampStep(distance, seconds, rate float64) float64 {
	if !(seconds > 0) || !(rate > 0) {
		return math.Inf(1)
	}
	return distance / (seconds * rate)
}

// clamp01 limits v to [0, 1], mapping NaN to 0.
func clamp01(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v > 0:
		return v
	}
	return 0
}
