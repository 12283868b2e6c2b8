// SPDX-License-Identifier: EPL-2.0

package sample

import (
	"io"

	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/audio"
)

// maxIdleReads bounds how many empty reads without io.EOF are tolerated
// before a source is considered finished.
const maxIdleReads = 64

// Sample is mono audio at its native rate. It is never modified after
// decoding.
type Sample struct {
	Path string
	Rate int
	Data []float32
}

// Frames returns the number of frames in s.
func (s *Sample) Frames() int {
	return len(s.Data)
}

// Decode reads src to the end, folding it to mono. It does not close src.
func Decode(src audio.Source) (*Sample, error) {
	if src.SampleRate() <= 0 {
		return nil, ErrInvalidRate
	}

	mono := audio.NewMonoMixer(src)
	chunk := mono.BufSize()
	if chunk <= 0 {
		chunk = 4096
	}

	var data []float32
	idle := 0
	for idle < maxIdleReads {
		data = growFor(data, chunk)
		n, err := mono.ReadSamples(data[len(data) : len(data)+chunk])
		data = data[:len(data)+n]
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errgo.NoteMask(err, "decoding sample", errgo.Is(audio.ErrNoChannels))
		}
		if n == 0 {
			idle++
			continue
		}
		idle = 0
	}

	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return &Sample{
		Rate: src.SampleRate(),
		Data: data[:len(data):len(data)],
	}, nil
}

// growFor makes sure data has room for n more elements.
func growFor(data []float32, n int) []float32 {
	if cap(data)-len(data) >= n {
		return data
	}
	grown := make([]float32, len(data), 2*cap(data)+n)
	copy(grown, data)
	return grown
}
