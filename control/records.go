// SPDX-License-Identifier: EPL-2.0

package control

import (
	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/setup"
)

func params(g setup.Generator) engine.Params {
	return engine.Params{
		SampleStart:    g.SampleStart,
		SampleEnd:      g.SampleEnd,
		Looping:        g.Looping,
		LoopStart:      g.LoopStart,
		LoopEnd:        g.LoopEnd,
		Gain:           g.Gain,
		Channel:        g.Channel,
		Note:           g.Note,
		MinNote:        g.MinNote,
		MaxNote:        g.MaxNote,
		MinVelocity:    g.MinVelocity,
		MaxVelocity:    g.MaxVelocity,
		VelocityFactor: g.VelocityFactor,
		Attack:         g.Attack,
		Decay:          g.Decay,
		Sustain:        g.Sustain,
		Release:        g.Release,
	}
}

func record(name, path string, p engine.Params) setup.Generator {
	return setup.Generator{
		Name:           name,
		Sample:         path,
		SampleStart:    p.SampleStart,
		SampleEnd:      p.SampleEnd,
		Looping:        p.Looping,
		LoopStart:      p.LoopStart,
		LoopEnd:        p.LoopEnd,
		Gain:           p.Gain,
		Channel:        p.Channel,
		Note:           p.Note,
		MinNote:        p.MinNote,
		MaxNote:        p.MaxNote,
		MinVelocity:    p.MinVelocity,
		MaxVelocity:    p.MaxVelocity,
		VelocityFactor: p.VelocityFactor,
		Attack:         p.Attack,
		Decay:          p.Decay,
		Sustain:        p.Sustain,
		Release:        p.Release,
	}
}
