// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"io"
	"testing"
)

type mockOgg struct {
	channels int
	values   []float32
}

func (m *mockOgg) SampleRate() int { return 44100 }
func (m *mockOgg) Channels() int   { return m.channels }

func (m *mockOgg) Read(p []float32) (int, error) {
	if len(m.values) == 0 {
		return 0, io.EOF
	}
	n := copy(p, m.values)
	n -= n % m.channels
	m.values = m.values[n:]
	return n, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	dec := &mockOgg{channels: 2, values: []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}}
	s := &source{dec: dec, sampleRate: 44100, channels: 2}

	// An odd-length buffer is trimmed to whole frames.
	buf := make([]float32, 5)
	n, err := s.ReadSamples(buf)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("ReadSamples() n = %d, want 4", n)
	}
	if buf[3] != 0.4 {
		t.Errorf("buf[3] = %v, want 0.4", buf[3])
	}

	n, _ = s.ReadSamples(buf)
	if n != 2 {
		t.Fatalf("second ReadSamples() n = %d, want 2", n)
	}

	if n, err := s.ReadSamples(buf); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() at end = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestSource_ShortBuffer(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockOgg{channels: 2, values: []float32{1, 1}}, channels: 2}
	if n, err := s.ReadSamples(make([]float32, 1)); n != 0 || err != nil {
		t.Errorf("ReadSamples(1) = %d, %v; want 0, nil", n, err)
	}
	if s.BufSize()%2 != 0 {
		t.Errorf("BufSize() = %d, want a whole number of frames", s.BufSize())
	}
}

func TestDecoder_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("OggS but not really"))); err == nil {
		t.Error("Decode() error = nil, want error")
	}
}
