// SPDX-License-Identifier: EPL-2.0

//go:build headless

package driver

func MIDIPorts() ([]string, error) {
	return nil, ErrUnavailable
}

func OpenMIDI(string, *MIDIInput) (func(), error) {
	return nil, ErrUnavailable
}
