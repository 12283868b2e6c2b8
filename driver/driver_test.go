// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/formats/wav"
	"github.com/ik5/jass/midi"
	"github.com/ik5/jass/sample"
)

func ramp(n int) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i+1) / 32
	}
	return data
}

// newEngine returns an engine that will play data unchanged on channel 0
// once it has processed its first block.
func newEngine(c *qt.C, data []float32) *engine.Engine {
	a := arena.New()
	e := engine.New(engine.Config{})

	p := engine.DefaultParams(len(data))
	p.Attack, p.Decay, p.Release = 0, 0, 0
	p.VelocityFactor = 0

	s := arena.Acquire(a, &sample.Sample{Rate: e.SampleRate(), Data: data}, nil)
	g := engine.AcquireGenerator(a, s, p, engine.AcquireVoices(a, 4))
	c.Assert(e.Commands().Write(engine.ReplaceGenerators(engine.AcquireCollection(a, engine.Collection{g}))), qt.IsTrue)
	return e
}

func decode(p []byte) (left, right []float32) {
	for off := 0; off+BytesPerFrame <= len(p); off += BytesPerFrame {
		left = append(left, math.Float32frombits(binary.LittleEndian.Uint32(p[off:])))
		right = append(right, math.Float32frombits(binary.LittleEndian.Uint32(p[off+4:])))
	}
	return left, right
}

func TestMIDIInput(t *testing.T) {
	c := qt.New(t)

	in := NewMIDIInput(4)
	c.Assert(in.Feed(nil), qt.IsFalse)
	c.Assert(in.Feed([]byte{0xf0, 1, 2, 3, 4, 0xf7}), qt.IsFalse)
	for key := range uint8(4) {
		c.Assert(in.Feed(gomidi.NoteOn(0, 60+key, 100)), qt.IsTrue)
	}
	c.Assert(in.Feed(gomidi.NoteOff(0, 60)), qt.IsFalse)
	c.Assert(in.Dropped(), qt.Equals, uint64(1))

	buf := midi.NewBuffer(3)
	in.Drain(buf)
	c.Assert(buf.Len(), qt.Equals, 3)
	c.Assert(buf.Dropped(), qt.Equals, uint64(0))
	c.Assert(midi.Decode(buf.At(2)).Key, qt.Equals, uint8(62))

	buf.Reset()
	in.Drain(buf)
	c.Assert(buf.Len(), qt.Equals, 1)
	n := midi.Decode(buf.At(0))
	c.Assert(n.Kind, qt.Equals, midi.KindNoteOn)
	c.Assert(n.Key, qt.Equals, uint8(63))
	c.Assert(buf.At(0).Offset, qt.Equals, int32(0))
}

func TestRendererSpansBlocks(t *testing.T) {
	c := qt.New(t)

	data := ramp(16)
	e := newEngine(c, data)
	in := NewMIDIInput(8)
	r := NewRenderer(e, in, 4, 8)

	c.Assert(in.Feed(gomidi.NoteOn(0, 60, 100)), qt.IsTrue)

	p := make([]byte, 3*BytesPerFrame)
	c.Assert(r.Fill(p), qt.Equals, len(p))
	left, right := decode(p)
	c.Assert(left, qt.DeepEquals, data[:3])
	c.Assert(right, qt.DeepEquals, left)
	c.Assert(e.Stats().Frames, qt.Equals, uint64(4))

	c.Assert(r.Fill(p), qt.Equals, len(p))
	left, _ = decode(p)
	c.Assert(left, qt.DeepEquals, data[3:6])
	c.Assert(e.Stats().Frames, qt.Equals, uint64(8))
}

func TestRendererPartialFrame(t *testing.T) {
	c := qt.New(t)

	r := NewRenderer(engine.New(engine.Config{}), nil, 4, 4)
	p := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	c.Assert(r.Fill(p), qt.Equals, BytesPerFrame)
	c.Assert(p, qt.DeepEquals, make([]byte, 10))
}

func TestRendererDoesNotAllocate(t *testing.T) {
	c := qt.New(t)

	e := newEngine(c, ramp(1024))
	in := NewMIDIInput(8)
	r := NewRenderer(e, in, 64, 8)
	p := make([]byte, 100*BytesPerFrame)

	allocs := testing.AllocsPerRun(20, func() {
		r.Fill(p)
	})
	c.Assert(allocs, qt.Equals, 0.0)
}

func TestOfflineRender(t *testing.T) {
	c := qt.New(t)

	data := ramp(16)
	e := newEngine(c, data)
	o := NewOffline(e, 4, 8)
	blocks := 0
	o.BeforeBlock = func() { blocks++ }

	left, right := o.Render(14, []Timed{
		{Frame: 20, Message: gomidi.NoteOn(0, 61, 100)},
		{Frame: 6, Message: gomidi.NoteOn(0, 60, 100)},
		{Frame: 10, Message: gomidi.NoteOff(0, 60)},
	})
	c.Assert(blocks, qt.Equals, 4)
	c.Assert(left, qt.HasLen, 14)
	c.Assert(right, qt.DeepEquals, left)

	want := make([]float32, 14)
	copy(want[6:10], data[:4])
	c.Assert(left, qt.DeepEquals, want)
}

func TestWriteWAV(t *testing.T) {
	c := qt.New(t)

	left := []float32{0, 0.5, -0.5, 1}
	right := []float32{0.25, -0.25, 0, -1}

	path := filepath.Join(c.TempDir(), "out.wav")
	f, err := os.Create(path)
	c.Assert(err, qt.IsNil)
	c.Assert(WriteWAV(f, 44100, left, right), qt.IsNil)
	c.Assert(f.Close(), qt.IsNil)

	f, err = os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	c.Assert(err, qt.IsNil)
	defer src.Close()
	c.Assert(src.SampleRate(), qt.Equals, 44100)
	c.Assert(src.Channels(), qt.Equals, 2)

	got := make([]float32, 16)
	n, _ := src.ReadSamples(got)
	c.Assert(n, qt.Equals, 8)
	for i := range 4 {
		c.Check(math.Abs(float64(got[2*i]-left[i])) < 1e-3, qt.IsTrue, qt.Commentf("left %d: %v", i, got[2*i]))
		c.Check(math.Abs(float64(got[2*i+1]-right[i])) < 1e-3, qt.IsTrue, qt.Commentf("right %d: %v", i, got[2*i+1]))
	}
}
