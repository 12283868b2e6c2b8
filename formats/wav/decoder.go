// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"io"

	"github.com/go-audio/wav"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/audio"
	"github.com/ik5/jass/formats/internal/pcm"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xfffe
)

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errgo.Notef(err, "reading wav data")
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, ErrUnsupportedEncoding
	}

	// 8-bit WAV samples are unsigned.
	bias := 0
	if dec.BitDepth == 8 {
		bias = 128
	}

	src, err := pcm.New(dec, int(dec.BitDepth), bias)
	if err != nil {
		return nil, errgo.Mask(err, errgo.Is(pcm.ErrUnsupportedBitDepth))
	}
	return src, nil
}
