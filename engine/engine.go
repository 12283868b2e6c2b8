// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync/atomic"

	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/midi"
	"github.com/ik5/jass/ring"
)

// Ack is the token written back for every executed command.
type Ack = uint8

// Config fixes the engine's rate and channel sizes for its lifetime.
type Config struct {
	SampleRate      int
	CommandCapacity int
	AckCapacity     int
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		SampleRate:      48000,
		CommandCapacity: 1024,
		AckCapacity:     1024,
	}
}

// Stats are counters maintained by the audio goroutine.
type Stats struct {
	Commands     uint64
	AckOverflows uint64
	Frames       uint64
	// MIDIDropped is the number of events the input buffer could not hold.
	MIDIDropped uint64
}

// Engine renders generators on the audio goroutine.
type Engine struct {
	sampleRate int
	rate       float64

	commands *ring.Ring[Command]
	acks     *ring.Ring[Ack]

	// Owned by the audio goroutine.
	collection *arena.Cell[Collection]
	auditor    *arena.Cell[*Generator]
	frame      uint64

	executed     atomic.Uint64
	ackOverflows atomic.Uint64
	frames       atomic.Uint64
	midiDropped  atomic.Uint64
}

// New returns an engine with no generators.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = def.CommandCapacity
	}
	if cfg.AckCapacity <= 0 {
		cfg.AckCapacity = def.AckCapacity
	}

	return &Engine{
		sampleRate: cfg.SampleRate,
		rate:       float64(cfg.SampleRate),
		commands:   ring.New[Command](cfg.CommandCapacity),
		acks:       ring.New[Ack](cfg.AckCapacity),
	}
}

// SampleRate returns the rate the engine renders at.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Commands is the channel the control side writes to.
func (e *Engine) Commands() *ring.Ring[Command] { return e.commands }

// Acknowledgements is the channel the control side reads from.
func (e *Engine) Acknowledgements() *ring.Ring[Ack] { return e.acks }

// Stats returns a snapshot of the counters. Safe from any goroutine.
func (e *Engine) Stats() Stats {
	return Stats{
		Commands:     e.executed.Load(),
		AckOverflows: e.ackOverflows.Load(),
		Frames:       e.frames.Load(),
		MIDIDropped:  e.midiDropped.Load(),
	}
}

// Generators returns the installed collection, nil before the first
// replacement. Only call it from the goroutine running Process.
func (e *Engine) Generators() Collection {
	if e.collection == nil {
		return nil
	}
	return e.collection.Value()
}

// Auditor returns the installed auditor, with the same restriction as
// Generators.
func (e *Engine) Auditor() *Generator {
	if e.auditor == nil {
		return nil
	}
	return e.auditor.Value()
}

// Process renders one buffer. len(out0) is the buffer's frame count; in
// may be nil. The events in 'in' are sorted in place.
func (e *Engine) Process(out0, out1 []float32, in *midi.Buffer) {
	n := min(len(out0), len(out1))
	clear(out0)
	clear(out1)

	e.drainCommands()

	start := 0
	if count := in.Len(); count > 0 {
		in.Sort()
		for i := range count {
			ev := in.At(i)
			off := clampOffset(ev.Offset, n)
			if off > start {
				e.render(out0[start:off], out1[start:off])
				start = off
			}
			e.dispatch(ev, e.frame+uint64(off))
		}
	}
	if start < n {
		e.render(out0[start:n], out1[start:n])
	}

	if d := in.Dropped(); d > 0 {
		e.midiDropped.Store(d)
	}
	e.frame += uint64(len(out0))
	e.frames.Store(e.frame)
}

func clampOffset(off int32, n int) int {
	switch {
	case off < 0:
		return 0
	case int(off) > n:
		return n
	}
	return int(off)
}

func (e *Engine) drainCommands() {
	for {
		cmd, ok := e.commands.Read()
		if !ok {
			return
		}
		e.execute(&cmd)
		e.executed.Add(1)
		if !e.acks.Write(0) {
			e.ackOverflows.Add(1)
		}
	}
}

func (e *Engine) execute(cmd *Command) {
	switch cmd.Kind {
	case CmdReplaceGenerators:
		e.collection = cmd.Generators
	case CmdReplaceAuditor:
		e.auditor = cmd.Generator
	case CmdPlayAuditor:
		if e.auditor != nil {
			e.auditor.Value().audition(e.frame)
		}
	case CmdSetParam:
		if cmd.Generator != nil {
			cmd.Generator.Value().params.Set(cmd.Param, cmd.Value)
		}
	case CmdSetParams:
		if cmd.Generator != nil {
			cmd.Generator.Value().params = cmd.Params
		}
	case CmdReplaceVoices:
		if cmd.Generator != nil && cmd.Voices != nil {
			cmd.Generator.Value().voices = cmd.Voices
		}
	case CmdAllNotesOff:
		if e.auditor != nil {
			e.auditor.Value().allNotesOff()
		}
		for _, g := range e.Generators() {
			g.Value().allNotesOff()
		}
	}
}

func (e *Engine) render(out0, out1 []float32) {
	if e.auditor != nil {
		e.auditor.Value().render(out0, out1, e.rate)
	}
	for _, g := range e.Generators() {
		g.Value().render(out0, out1, e.rate)
	}
}

func (e *Engine) dispatch(ev *midi.Event, frame uint64) {
	n := midi.Decode(ev)
	switch n.Kind {
	case midi.KindNoteOn:
		if e.auditor != nil {
			e.auditor.Value().noteOn(n.Channel, n.Key, n.Velocity, frame)
		}
		for _, g := range e.Generators() {
			g.Value().noteOn(n.Channel, n.Key, n.Velocity, frame)
		}
	case midi.KindNoteOff:
		if e.auditor != nil {
			e.auditor.Value().noteOff(n.Channel, n.Key)
		}
		for _, g := range e.Generators() {
			g.Value().noteOff(n.Channel, n.Key)
		}
	}
}
