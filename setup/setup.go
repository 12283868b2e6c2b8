// SPDX-License-Identifier: EPL-2.0

// Package setup reads and writes jass setups: the polyphony and the flat
// list of generator records that describe a playable instrument.
package setup

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/errgo.v1"
	"gopkg.in/yaml.v1"
)

// DefaultPolyphony is used when a setup does not name one.
const DefaultPolyphony = 8

// ErrInvalid is the cause of errors about malformed setups.
var ErrInvalid = errors.New("invalid setup")

// Setup is a complete instrument.
type Setup struct {
	Polyphony  int         `yaml:"polyphony,omitempty"`
	Generators []Generator `yaml:"generators"`
}

// Generator is one generator record.
type Generator struct {
	Name   string `yaml:"name"`
	Sample string `yaml:"sample"`

	SampleStart int  `yaml:"sample-start"`
	SampleEnd   int  `yaml:"sample-end"`
	Looping     bool `yaml:"looping"`
	LoopStart   int  `yaml:"loop-start"`
	LoopEnd     int  `yaml:"loop-end"`

	Gain    float64 `yaml:"gain"`
	Channel int     `yaml:"channel"`

	Note    int `yaml:"note"`
	MinNote int `yaml:"min-note"`
	MaxNote int `yaml:"max-note"`

	MinVelocity    int     `yaml:"min-velocity"`
	MaxVelocity    int     `yaml:"max-velocity"`
	VelocityFactor float64 `yaml:"velocity-factor"`

	Attack  float64 `yaml:"attack"`
	Decay   float64 `yaml:"decay"`
	Sustain float64 `yaml:"sustain"`
	Release float64 `yaml:"release"`
}

// Read parses a setup. A missing polyphony becomes DefaultPolyphony.
func Read(r io.Reader) (Setup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Setup{}, errgo.Notef(err, "reading setup")
	}

	var s Setup
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Setup{}, errgo.WithCausef(err, ErrInvalid, "parsing setup")
	}
	if s.Polyphony == 0 {
		s.Polyphony = DefaultPolyphony
	}
	if err := s.Validate(); err != nil {
		return Setup{}, err
	}
	return s, nil
}

// Validate checks what can be checked without the sample files.
func (s *Setup) Validate() error {
	if s.Polyphony < 1 {
		return errgo.WithCausef(nil, ErrInvalid, "polyphony %d must be at least 1", s.Polyphony)
	}
	for i, g := range s.Generators {
		if g.Sample == "" {
			return errgo.WithCausef(nil, ErrInvalid, "generator %d (%q) has no sample", i, g.Name)
		}
	}
	return nil
}

// Write encodes s.
func Write(w io.Writer, s Setup) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errgo.Notef(err, "encoding setup")
	}
	if _, err := w.Write(data); err != nil {
		return errgo.Notef(err, "writing setup")
	}
	return nil
}

// Load reads the setup at path. Relative sample paths are taken relative
// to the directory holding the setup file.
func Load(path string) (Setup, error) {
	f, err := os.Open(path)
	if err != nil {
		return Setup{}, errgo.NoteMask(err, "opening setup", os.IsNotExist)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return Setup{}, errgo.NoteMask(err, path, errgo.Is(ErrInvalid))
	}

	dir := filepath.Dir(path)
	for i := range s.Generators {
		if p := s.Generators[i].Sample; !filepath.IsAbs(p) {
			s.Generators[i].Sample = filepath.Join(dir, p)
		}
	}
	return s, nil
}

// Save writes s to path, replacing any existing file only once the new
// contents have been written completely.
func Save(path string, s Setup) error {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".setup-*")
	if err != nil {
		return errgo.Notef(err, "saving setup")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errgo.Notef(err, "saving setup")
	}
	if err := tmp.Close(); err != nil {
		return errgo.Notef(err, "saving setup")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errgo.Notef(err, "saving setup")
	}
	return nil
}
