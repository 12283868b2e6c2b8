// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives used to load samples.
//
//   - Source interface for decoded PCM input
//   - Decoder and Registry for picking a decoder by file extension
//   - MonoMixer for folding multi-channel files down to mono
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Every decoder in formats/ returns a Source with samples as float32 values
// in [-1, 1], interleaved when there is more than one channel.
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	dec, err := registry.ForPath("kick.wav")
//
// Lookup is by lower-cased extension; ErrUnknownFormat is returned for
// anything not registered.
//
// # Channel Mixing
//
//	mono := audio.NewMonoMixer(source)
//	n, err := mono.ReadSamples(buf) // n is in frames
//
// Samples are never resampled: a file keeps its native rate.
package audio
