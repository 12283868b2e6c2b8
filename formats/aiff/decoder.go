// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"io"

	"github.com/go-audio/aiff"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/audio"
	"github.com/ik5/jass/formats/internal/pcm"
)

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio needs to seek between chunks.
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errgo.Notef(err, "reading aiff data")
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	if dec.Format() == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	src, err := pcm.New(dec, int(dec.BitDepth), 0)
	if err != nil {
		return nil, errgo.Mask(err, errgo.Is(pcm.ErrUnsupportedBitDepth))
	}
	return src, nil
}
