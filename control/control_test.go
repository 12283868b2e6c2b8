// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/audio"
	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/formats/wav"
	"github.com/ik5/jass/sample"
	"github.com/ik5/jass/setup"
)

type rig struct {
	c          *qt.C
	dir        string
	arena      *arena.Arena
	engine     *engine.Engine
	controller *Controller
}

func newRig(c *qt.C, ecfg engine.Config, cfg Config) *rig {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})

	a := arena.New()
	e := engine.New(ecfg)
	l := sample.NewLoader(a, reg, e.SampleRate())
	return &rig{
		c:          c,
		dir:        c.TempDir(),
		arena:      a,
		engine:     e,
		controller: New(e, a, l, cfg),
	}
}

// sample writes a mono WAV file of frames frames and returns its path.
func (r *rig) sample(name string, frames int) string {
	data := make([]int16, frames)
	for i := range data {
		data[i] = int16(i % 1000)
	}

	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	r.c.Assert(err, qt.IsNil)
	defer f.Close()
	r.c.Assert(wav.WriteWAV16(f, r.engine.SampleRate(), 1, data), qt.IsNil)
	return path
}

// process runs one audio buffer on the calling goroutine.
func (r *rig) process() {
	out0 := make([]float32, 64)
	out1 := make([]float32, 64)
	r.engine.Process(out0, out1, nil)
}

// settle processes and reads acknowledgements until nothing is outstanding.
func (r *rig) settle() {
	r.process()
	r.controller.CheckAcknowledgements()
	r.c.Assert(r.controller.Outstanding(), qt.Equals, 0)
}

func names(infos []GeneratorInfo) []string {
	var ns []string
	for _, g := range infos {
		ns = append(ns, g.Name)
	}
	return ns
}

func TestLoadSamples(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	err := ctl.LoadSamples(r.sample("kick.wav", 1000), r.sample("snare.wav", 500))
	c.Assert(err, qt.IsNil)
	c.Assert(ctl.Enabled(), qt.IsFalse)
	c.Assert(ctl.Outstanding(), qt.Equals, 1)
	c.Assert(r.engine.Generators(), qt.HasLen, 0)

	r.process()
	c.Assert(r.engine.Generators(), qt.HasLen, 2)
	c.Assert(ctl.CheckAcknowledgements(), qt.Equals, 1)
	c.Assert(ctl.Enabled(), qt.IsTrue)

	gens := ctl.Generators()
	c.Assert(names(gens), qt.DeepEquals, []string{"kick", "snare"})
	c.Assert(gens[1].Frames, qt.Equals, 500)
	c.Assert(gens[1].Rate, qt.Equals, 48000)
	c.Assert(gens[1].Params, qt.DeepEquals, engine.DefaultParams(500))
	c.Assert(r.engine.Generators()[0].Value().Voices(), qt.HasLen, setup.DefaultPolyphony)
}

func TestLoadSamplesPartialFailure(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})

	err := r.controller.LoadSamples(filepath.Join(r.dir, "missing.wav"), r.sample("hat.wav", 100))
	c.Assert(err, qt.ErrorMatches, `(?s)opening sample: .*missing.wav.*`)

	r.settle()
	c.Assert(names(r.controller.Generators()), qt.DeepEquals, []string{"hat"})
}

func TestLoadSamplesAllFail(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})

	err := r.controller.LoadSamples(filepath.Join(r.dir, "missing.flac"))
	c.Assert(err, qt.ErrorMatches, `.*missing.flac: no decoder registered for format`)
	c.Assert(r.controller.Outstanding(), qt.Equals, 0)
	c.Assert(r.controller.Enabled(), qt.IsTrue)
}

func TestNoPrematureDispose(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("kick.wav", 1000)), qt.IsNil)
	r.settle()
	gen := r.engine.Generators()[0]
	smp := gen.Value().Sample()

	c.Assert(ctl.RemoveGenerator(0), qt.IsNil)
	r.arena.Sweep()
	c.Assert(gen.Disposed(), qt.IsFalse)

	// Processed but not yet acknowledged.
	r.process()
	r.arena.Sweep()
	c.Assert(gen.Disposed(), qt.IsFalse)
	c.Assert(r.engine.Generators(), qt.HasLen, 0)

	c.Assert(ctl.CheckAcknowledgements(), qt.Equals, 1)
	c.Assert(r.arena.Sweep() > 0, qt.IsTrue)
	c.Assert(gen.Disposed(), qt.IsTrue)
	c.Assert(smp.Disposed(), qt.IsTrue)
	c.Assert(ctl.Generators(), qt.HasLen, 0)
}

func TestChannelFullLeavesMirror(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{CommandCapacity: 1}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("kick.wav", 1000)), qt.IsNil)
	r.settle()

	c.Assert(ctl.SetParam(0, engine.ParamGain, 0.5), qt.IsNil)
	err := ctl.SetParam(0, engine.ParamGain, 0.25)
	c.Assert(errgo.Cause(err), qt.Equals, ErrChannelFull)
	c.Assert(ctl.Outstanding(), qt.Equals, 1)
	c.Assert(ctl.Generators()[0].Params.Gain, qt.Equals, 0.5)

	err = ctl.DuplicateGenerator(0)
	c.Assert(errgo.Cause(err), qt.Equals, ErrChannelFull)
	c.Assert(ctl.Generators(), qt.HasLen, 1)
	c.Assert(ctl.Enabled(), qt.IsTrue)

	r.settle()
	c.Assert(r.engine.Generators()[0].Value().Params().Gain, qt.Equals, 0.5)

	// The collection built for the failed duplicate is reclaimed.
	live := r.arena.Live()
	r.arena.Sweep()
	c.Assert(r.arena.Live() < live, qt.IsTrue)
}

func TestLostAckKeepsEditsDisabled(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{AckCapacity: 1}, Config{})
	ctl := r.controller

	c.Assert(ctl.Audit(r.sample("tom.wav", 1000)), qt.IsNil)
	c.Assert(ctl.Outstanding(), qt.Equals, 2)

	r.process()
	c.Assert(r.engine.Stats().AckOverflows, qt.Equals, uint64(1))
	c.Assert(ctl.CheckAcknowledgements(), qt.Equals, 1)
	c.Assert(ctl.Outstanding(), qt.Equals, 1)
	c.Assert(ctl.Enabled(), qt.IsFalse)

	err := ctl.LoadSamples(r.sample("kick.wav", 100))
	c.Assert(errgo.Cause(err), qt.Equals, ErrDisabled)
}

func TestExtraAckPanics(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})

	r.engine.Acknowledgements().Write(0)
	c.Assert(func() { r.controller.CheckAcknowledgements() }, qt.PanicMatches, `control: 1 more acknowledgements than commands`)
}

func TestDeferRunsInOrder(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	var got []int
	ctl.Defer(func() { got = append(got, 0) })
	c.Assert(got, qt.DeepEquals, []int{0})

	c.Assert(ctl.AllNotesOff(), qt.IsNil)
	ctl.Defer(func() { got = append(got, 1) })
	ctl.Defer(func() { got = append(got, 2) })
	c.Assert(got, qt.DeepEquals, []int{0})

	r.settle()
	c.Assert(got, qt.DeepEquals, []int{0, 1, 2})
}

func TestHooks(t *testing.T) {
	c := qt.New(t)

	var (
		enabled []bool
		changed int
	)
	r := newRig(c, engine.Config{}, Config{
		OnEnabled:           func(e bool) { enabled = append(enabled, e) },
		OnGeneratorsChanged: func() { changed++ },
	})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("kick.wav", 1000)), qt.IsNil)
	c.Assert(enabled, qt.DeepEquals, []bool{false})
	c.Assert(changed, qt.Equals, 0)

	r.settle()
	c.Assert(enabled, qt.DeepEquals, []bool{false, true})
	c.Assert(changed, qt.Equals, 1)

	// Non-blocking edits neither disable nor notify.
	c.Assert(ctl.SetParam(0, engine.ParamNote, 61), qt.IsNil)
	r.settle()
	c.Assert(enabled, qt.HasLen, 2)
	c.Assert(changed, qt.Equals, 1)
}

func TestAllNotesOffWhileDisabled(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("kick.wav", 1000)), qt.IsNil)
	c.Assert(ctl.Enabled(), qt.IsFalse)
	c.Assert(ctl.AllNotesOff(), qt.IsNil)
	c.Assert(ctl.Outstanding(), qt.Equals, 2)

	r.process()
	c.Assert(ctl.CheckAcknowledgements(), qt.Equals, 2)
	c.Assert(ctl.Enabled(), qt.IsTrue)
}

func TestSetParam(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("kick.wav", 1000)), qt.IsNil)
	r.settle()

	err := ctl.SetParam(0, engine.ParamSustain, 2)
	c.Assert(err, qt.ErrorMatches, `sustain: sustain 2 outside \[0, 1\]`)
	c.Assert(errgo.Cause(err), qt.Equals, engine.ErrInvalidParams)
	c.Assert(ctl.Outstanding(), qt.Equals, 0)
	c.Assert(ctl.Generators()[0].Params.Sustain, qt.Equals, 1.0)

	err = ctl.SetParam(3, engine.ParamGain, 1)
	c.Assert(errgo.Cause(err), qt.Equals, ErrNoGenerator)

	c.Assert(ctl.SetParam(0, engine.ParamLoopStart, 100), qt.IsNil)
	c.Assert(ctl.SetParam(0, engine.ParamLooping, 1), qt.IsNil)
	c.Assert(ctl.Enabled(), qt.IsTrue)
	r.settle()

	p := r.engine.Generators()[0].Value().Params()
	c.Assert(p.Looping, qt.IsTrue)
	c.Assert(p.LoopStart, qt.Equals, 100)
	c.Assert(ctl.Generators()[0].Params, qt.DeepEquals, p)
}

func TestSetParams(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("kick.wav", 1000)), qt.IsNil)
	r.settle()

	p := engine.DefaultParams(1000)
	p.SampleEnd = 2000
	c.Assert(errgo.Cause(ctl.SetParams(0, p)), qt.Equals, engine.ErrInvalidParams)

	p.SampleEnd = 800
	p.Channel = 9
	c.Assert(ctl.SetParams(0, p), qt.IsNil)
	r.settle()
	c.Assert(r.engine.Generators()[0].Value().Params(), qt.DeepEquals, p)
}

func TestSetContinuousNotes(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("a.wav", 100), r.sample("b.wav", 100), r.sample("c.wav", 100)), qt.IsNil)
	r.settle()
	c.Assert(ctl.SetParam(0, engine.ParamNote, 36), qt.IsNil)

	c.Assert(ctl.SetContinuousNotes(0, 2), qt.IsNil)
	c.Assert(ctl.Outstanding(), qt.Equals, 3)
	r.settle()

	gens := r.engine.Generators()
	for i, want := range []struct{ note, min, max int }{
		{36, 36, 36},
		{60, 0, 127},
		{37, 37, 37},
	} {
		p := gens[i].Value().Params()
		c.Check([]int{p.Note, p.MinNote, p.MaxNote}, qt.DeepEquals, []int{want.note, want.min, want.max}, qt.Commentf("generator %d", i))
	}

	c.Assert(ctl.SetParam(0, engine.ParamMaxNote, 127), qt.IsNil)
	c.Assert(ctl.SetParam(0, engine.ParamNote, 127), qt.IsNil)
	err := ctl.SetContinuousNotes(0, 1)
	c.Assert(errgo.Cause(err), qt.Equals, engine.ErrInvalidParams)
	c.Assert(ctl.Generators()[1].Params.Note, qt.Equals, 60)
}

func TestSetPolyphony(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{Polyphony: 4})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("a.wav", 100), r.sample("b.wav", 100)), qt.IsNil)
	r.settle()
	c.Assert(r.engine.Generators()[1].Value().Voices(), qt.HasLen, 4)

	c.Assert(errgo.Cause(ctl.SetPolyphony(0)), qt.Equals, ErrInvalidPolyphony)

	c.Assert(ctl.SetPolyphony(2), qt.IsNil)
	c.Assert(ctl.Enabled(), qt.IsFalse)
	c.Assert(ctl.Polyphony(), qt.Equals, 2)

	r.process()
	c.Assert(r.arena.Sweep(), qt.Equals, 0)
	r.controller.CheckAcknowledgements()
	c.Assert(r.arena.Sweep(), qt.Equals, 2)

	for _, g := range r.engine.Generators() {
		c.Assert(g.Value().Voices(), qt.HasLen, 2)
	}

	// New generators get the new polyphony.
	c.Assert(ctl.DuplicateGenerator(0), qt.IsNil)
	r.settle()
	c.Assert(r.engine.Generators()[1].Value().Voices(), qt.HasLen, 2)
}

func TestAudit(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.Audit(r.sample("tom.wav", 1000)), qt.IsNil)
	r.settle()

	aud := r.engine.Auditor()
	c.Assert(aud, qt.IsNotNil)
	c.Assert(aud.Params().Channel, qt.Equals, engine.AuditChannel)
	c.Assert(aud.Voices(), qt.HasLen, 1)
	c.Assert(aud.ActiveVoices(), qt.Equals, 1)

	c.Assert(ctl.Audit(r.sample("crash.wav", 1000)), qt.IsNil)
	r.settle()
	c.Assert(r.engine.Auditor(), qt.Not(qt.Equals), aud)
	c.Assert(r.arena.Sweep(), qt.Equals, 3)
}

func TestDuplicateGenerator(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("a.wav", 100), r.sample("b.wav", 100)), qt.IsNil)
	r.settle()
	c.Assert(ctl.SetParam(0, engine.ParamGain, 0.3), qt.IsNil)
	c.Assert(ctl.Rename(0, "lead"), qt.IsNil)

	c.Assert(ctl.DuplicateGenerator(0), qt.IsNil)
	r.settle()

	gens := ctl.Generators()
	c.Assert(names(gens), qt.DeepEquals, []string{"lead", "lead", "b"})
	c.Assert(gens[1].Path, qt.Equals, gens[0].Path)
	c.Assert(gens[1].Params.Gain, qt.Equals, 0.3)

	eg := r.engine.Generators()
	c.Assert(eg, qt.HasLen, 3)
	c.Assert(eg[1].Value().Sample(), qt.Equals, eg[0].Value().Sample())
	c.Assert(eg[1], qt.Not(qt.Equals), eg[0])

	c.Assert(errgo.Cause(ctl.DuplicateGenerator(5)), qt.Equals, ErrNoGenerator)
	c.Assert(errgo.Cause(ctl.RemoveGenerator(-1)), qt.Equals, ErrNoGenerator)
}

func TestLoadSetup(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("old.wav", 100)), qt.IsNil)
	r.settle()
	old := r.engine.Generators()[0]

	s := setup.Setup{
		Polyphony: 3,
		Generators: []setup.Generator{
			record("kick", r.sample("kick.wav", 1000), engine.DefaultParams(1000)),
			record("snare", r.sample("snare.wav", 500), engine.DefaultParams(500)),
		},
	}
	s.Generators[1].Channel = 9
	s.Generators[1].Looping = true
	s.Generators[1].LoopStart = 100

	c.Assert(ctl.LoadSetup(s), qt.IsNil)
	r.settle()
	r.arena.Sweep()

	c.Assert(old.Disposed(), qt.IsTrue)
	c.Assert(ctl.Polyphony(), qt.Equals, 3)
	c.Assert(ctl.Setup(), qt.DeepEquals, s)
	c.Assert(r.engine.Generators()[1].Value().Params().LoopStart, qt.Equals, 100)
	c.Assert(r.engine.Generators()[1].Value().Voices(), qt.HasLen, 3)
}

func TestLoadSetupFailureKeepsState(t *testing.T) {
	c := qt.New(t)
	r := newRig(c, engine.Config{}, Config{})
	ctl := r.controller

	c.Assert(ctl.LoadSamples(r.sample("old.wav", 100)), qt.IsNil)
	r.settle()
	r.arena.Sweep()
	live := r.arena.Live()

	good := record("kick", r.sample("kick.wav", 1000), engine.DefaultParams(1000))
	bad := record("snare", r.sample("snare.wav", 500), engine.DefaultParams(500))
	bad.Note = 200

	err := ctl.LoadSetup(setup.Setup{Generators: []setup.Generator{good, bad}})
	c.Assert(err, qt.ErrorMatches, `generator 1 \(snare\): notes must lie in \[0, 127\]`)
	c.Assert(errgo.Cause(err), qt.Equals, engine.ErrInvalidParams)

	missing := good
	missing.Sample = filepath.Join(r.dir, "gone.wav")
	err = ctl.LoadSetup(setup.Setup{Generators: []setup.Generator{good, missing}})
	c.Assert(err, qt.ErrorMatches, `generator 1 \(kick\): opening sample: .*`)

	c.Assert(ctl.Outstanding(), qt.Equals, 0)
	c.Assert(ctl.Enabled(), qt.IsTrue)
	c.Assert(names(ctl.Generators()), qt.DeepEquals, []string{"old"})
	c.Assert(ctl.Polyphony(), qt.Equals, setup.DefaultPolyphony)

	// Everything built for the failed setups is reclaimed.
	r.arena.Sweep()
	c.Assert(r.arena.Live(), qt.Equals, live)
}

func TestRun(t *testing.T) {
	c := qt.New(t)

	enabled := make(chan bool, 4)
	r := newRig(c, engine.Config{}, Config{
		AckInterval:     time.Millisecond,
		CleanupInterval: time.Millisecond,
		OnEnabled:       func(e bool) { enabled <- e },
	})
	ctl := r.controller

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctl.Run(ctx) }()

	c.Assert(ctl.LoadSamples(r.sample("kick.wav", 100)), qt.IsNil)
	c.Assert(<-enabled, qt.IsFalse)

	r.process()
	select {
	case e := <-enabled:
		c.Assert(e, qt.IsTrue)
	case <-time.After(5 * time.Second):
		c.Fatal("edits not enabled after acknowledgement")
	}

	cancel()
	c.Assert(<-done, qt.IsNil)
	c.Assert(ctl.Outstanding(), qt.Equals, 0)
}
