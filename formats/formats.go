// SPDX-License-Identifier: EPL-2.0

// Package formats registers every bundled decoder with an audio.Registry.
package formats

import (
	"github.com/ik5/jass/audio"
	"github.com/ik5/jass/formats/aiff"
	"github.com/ik5/jass/formats/mp3"
	"github.com/ik5/jass/formats/vorbis"
	"github.com/ik5/jass/formats/wav"
)

// Register adds the wav, aiff, mp3 and vorbis decoders to r under their
// usual file extensions.
func Register(r *audio.Registry) {
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
}

// NewRegistry returns a registry with every bundled decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)
	return r
}
