// SPDX-License-Identifier: EPL-2.0

package jass

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/juju/loggo"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/arena"
	"github.com/ik5/jass/config"
	"github.com/ik5/jass/control"
	"github.com/ik5/jass/driver"
	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/formats"
	"github.com/ik5/jass/sample"
	"github.com/ik5/jass/setup"
)

var logger = loggo.GetLogger("jass")

// Hooks are called on the controller's side once commands are
// acknowledged. Either may be nil.
type Hooks struct {
	OnEnabled           func(enabled bool)
	OnGeneratorsChanged func()
}

// System is one engine with everything needed to drive it.
type System struct {
	Config     config.Config
	Arena      *arena.Arena
	Engine     *engine.Engine
	Loader     *sample.Loader
	Controller *control.Controller
}

// New builds a system from cfg. Nothing is loaded and no device is opened.
func New(cfg config.Config, hooks Hooks) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errgo.Mask(err, errgo.Is(config.ErrInvalid))
	}

	a := arena.New()
	e := engine.New(cfg.Engine())
	l := sample.NewLoader(a, formats.NewRegistry(), e.SampleRate())

	ccfg := cfg.Control()
	ccfg.OnEnabled = hooks.OnEnabled
	ccfg.OnGeneratorsChanged = hooks.OnGeneratorsChanged

	return &System{
		Config:     cfg,
		Arena:      a,
		Engine:     e,
		Loader:     l,
		Controller: control.New(e, a, l, ccfg),
	}, nil
}

// LoadSetupFile replaces the generators with the setup stored at path.
func (s *System) LoadSetupFile(path string) error {
	st, err := setup.Load(path)
	if err != nil {
		return errgo.Mask(err, errgo.Any)
	}
	if err := s.Controller.LoadSetup(st); err != nil {
		return errgo.NoteMask(err, path, errgo.Any)
	}
	return nil
}

// SaveSetupFile writes the current setup to path. Samples below the
// directory of path are stored with relative paths.
func (s *System) SaveSetupFile(path string) error {
	st := s.Controller.Setup()

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return errgo.Mask(err)
	}
	for i := range st.Generators {
		st.Generators[i].Sample = relativeTo(dir, st.Generators[i].Sample)
	}

	if err := setup.Save(path, st); err != nil {
		return errgo.Mask(err)
	}
	logger.Infof("saved setup to %q", path)
	return nil
}

func relativeTo(dir, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// Output opens the audio device. MIDI messages fed to in, which may be
// nil, are played.
func (s *System) Output(in *driver.MIDIInput) (*driver.Oto, error) {
	return driver.NewOto(s.Engine, in, driver.OutputConfig{
		BufferFrames:    s.Config.BufferFrames,
		EventsPerBuffer: s.Config.EventsPerBuffer,
		Latency:         s.Config.OutputBuffer.Duration,
	})
}

// MIDIInput returns a queue sized by the configuration.
func (s *System) MIDIInput() *driver.MIDIInput {
	return driver.NewMIDIInput(s.Config.MIDICapacity)
}

// Offline returns a renderer that reads acknowledgements and sweeps the
// arena between blocks, so that it can be used without Run.
func (s *System) Offline() *driver.Offline {
	o := driver.NewOffline(s.Engine, s.Config.BufferFrames, s.Config.EventsPerBuffer)
	o.BeforeBlock = func() {
		if s.Controller.CheckAcknowledgements() > 0 {
			s.Arena.Sweep()
		}
	}
	return o
}

// Run polls acknowledgements and reclaims memory until ctx is done.
func (s *System) Run(ctx context.Context) error {
	return s.Controller.Run(ctx)
}
