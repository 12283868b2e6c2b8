// SPDX-License-Identifier: EPL-2.0

// Package config holds the runtime settings of a jass process, read from a
// TOML file.
package config

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/juju/loggo"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/control"
	"github.com/ik5/jass/engine"
	"github.com/ik5/jass/setup"
)

var logger = loggo.GetLogger("jass.config")

// ErrInvalid is the cause of every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration written as a string such as "100ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errgo.WithCausef(err, ErrInvalid, "bad duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the whole configuration file.
type Config struct {
	SampleRate      int `toml:"sample-rate"`
	BufferFrames    int `toml:"buffer-frames"`
	CommandCapacity int `toml:"command-capacity"`
	AckCapacity     int `toml:"ack-capacity"`

	// MIDICapacity is the size of the queue between the MIDI listener and
	// the audio callback; EventsPerBuffer bounds the events one buffer
	// takes from it.
	MIDICapacity    int `toml:"midi-capacity"`
	EventsPerBuffer int `toml:"events-per-buffer"`

	Polyphony       int      `toml:"polyphony"`
	AckInterval     Duration `toml:"ack-interval"`
	CleanupInterval Duration `toml:"cleanup-interval"`
	OutputBuffer    Duration `toml:"output-buffer"`

	// Log is a loggo specification, e.g. "<root>=INFO;jass.control=DEBUG".
	Log      string `toml:"log"`
	MIDIPort string `toml:"midi-port"`
}

// Default returns the configuration used for anything a file leaves out.
func Default() Config {
	return Config{
		SampleRate:      48000,
		BufferFrames:    256,
		CommandCapacity: 1024,
		AckCapacity:     1024,
		MIDICapacity:    256,
		EventsPerBuffer: 256,
		Polyphony:       setup.DefaultPolyphony,
		AckInterval:     Duration{100 * time.Millisecond},
		CleanupInterval: Duration{time.Second},
		OutputBuffer:    Duration{20 * time.Millisecond},
		Log:             "<root>=INFO",
	}
}

// Read decodes a configuration on top of the defaults.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errgo.NoteMask(err, "parsing configuration", errgo.Is(ErrInvalid))
	}
	warnUndecoded(md)
	return cfg, cfg.Validate()
}

// Load reads the configuration file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errgo.NoteMask(err, path, errgo.Is(ErrInvalid), os.IsNotExist)
	}
	warnUndecoded(md)
	if err := cfg.Validate(); err != nil {
		return Config{}, errgo.NoteMask(err, path, errgo.Is(ErrInvalid))
	}
	return cfg, nil
}

func warnUndecoded(md toml.MetaData) {
	for _, k := range md.Undecoded() {
		logger.Warningf("unknown configuration key %q", k.String())
	}
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return errgo.Notef(err, "writing configuration")
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	invalid := func(f string, a ...any) error {
		return errgo.WithCausef(nil, ErrInvalid, f, a...)
	}

	switch {
	case c.SampleRate <= 0:
		return invalid("sample rate %d must be positive", c.SampleRate)
	case c.BufferFrames <= 0:
		return invalid("buffer frames %d must be positive", c.BufferFrames)
	case c.CommandCapacity <= 0 || c.AckCapacity <= 0:
		return invalid("channel capacities must be positive")
	case c.MIDICapacity <= 0 || c.EventsPerBuffer <= 0:
		return invalid("MIDI capacities must be positive")
	case c.Polyphony <= 0:
		return invalid("polyphony %d must be positive", c.Polyphony)
	case c.AckInterval.Duration <= 0 || c.CleanupInterval.Duration <= 0:
		return invalid("poll intervals must be positive")
	case c.OutputBuffer.Duration < 0:
		return invalid("output buffer %v is negative", c.OutputBuffer)
	}
	if _, err := loggo.ParseConfigString(c.Log); err != nil {
		return errgo.WithCausef(err, ErrInvalid, "bad log specification %q", c.Log)
	}
	return nil
}

// Engine returns the engine settings.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		SampleRate:      c.SampleRate,
		CommandCapacity: c.CommandCapacity,
		AckCapacity:     c.AckCapacity,
	}
}

// Control returns the controller settings. Hooks are left unset.
func (c *Config) Control() control.Config {
	return control.Config{
		Polyphony:       c.Polyphony,
		AckInterval:     c.AckInterval.Duration,
		CleanupInterval: c.CleanupInterval.Duration,
	}
}
