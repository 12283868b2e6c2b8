// SPDX-License-Identifier: EPL-2.0

package driver

import (
	"time"

	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("jass.driver")

// OutputConfig sets up a real-time output.
type OutputConfig struct {
	// BufferFrames is the engine block size.
	BufferFrames int
	// EventsPerBuffer bounds the MIDI events taken per block.
	EventsPerBuffer int
	// Latency is the buffering requested from the audio device.
	Latency time.Duration
}
