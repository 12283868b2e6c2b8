// SPDX-License-Identifier: EPL-2.0

//go:build headless

package driver

import "github.com/ik5/jass/engine"

// Oto is not available in headless builds.
type Oto struct{}

func NewOto(*engine.Engine, *MIDIInput, OutputConfig) (*Oto, error) {
	return nil, ErrUnavailable
}

func (*Oto) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func (*Oto) Start() {}

func (*Oto) Close() error { return nil }
