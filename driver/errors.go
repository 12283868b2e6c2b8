// SPDX-License-Identifier: EPL-2.0

package driver

import "errors"

var (
	// ErrUnavailable is returned by backends left out of a headless build.
	ErrUnavailable = errors.New("driver not available in this build")

	ErrNoMIDIPort = errors.New("MIDI input port not found")
)
