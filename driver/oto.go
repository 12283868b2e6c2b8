// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package driver

import (
	"sync"

	"github.com/ebitengine/oto/v3"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/engine"
)

// Oto plays an engine through the system audio device. Its Read method is
// the audio callback.
type Oto struct {
	renderer *Renderer

	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

// NewOto opens the audio device at the engine's rate. in may be nil.
// Only one Oto can exist per process.
func NewOto(e *engine.Engine, in *MIDIInput, cfg OutputConfig) (*Oto, error) {
	op := &oto.NewContextOptions{
		SampleRate:   e.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.Latency,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, errgo.Notef(err, "opening audio device")
	}
	<-ready

	o := &Oto{
		renderer: NewRenderer(e, in, cfg.BufferFrames, cfg.EventsPerBuffer),
		ctx:      ctx,
	}
	o.player = ctx.NewPlayer(o)
	logger.Infof("audio output at %d Hz, %d frame blocks", e.SampleRate(), cfg.BufferFrames)
	return o, nil
}

// Read renders into p. It never fails.
func (o *Oto) Read(p []byte) (int, error) {
	o.renderer.Fill(p)
	return len(p), nil
}

// Start begins playback.
func (o *Oto) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
}

// Close stops playback for good.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	o.started = false
	return errgo.Mask(err)
}
