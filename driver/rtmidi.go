// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package driver

import (
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"gopkg.in/errgo.v1"
)

// MIDIPorts lists the MIDI input ports.
func MIDIPorts() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, errgo.Notef(err, "starting rtmidi")
	}
	defer drv.Close()

	ins, err := drv.Ins()
	if err != nil {
		return nil, errgo.Notef(err, "listing MIDI inputs")
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

// OpenMIDI feeds the messages of the first input port whose name contains
// port into in. An empty port picks the first input. The returned function
// stops listening and closes the port.
func OpenMIDI(port string, in *MIDIInput) (stop func(), err error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, errgo.Notef(err, "starting rtmidi")
	}

	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, errgo.Notef(err, "listing MIDI inputs")
	}
	var found drivers.In
	for _, p := range ins {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(port)) {
			found = p
			break
		}
	}
	if found == nil {
		drv.Close()
		return nil, errgo.WithCausef(nil, ErrNoMIDIPort, "no MIDI input matching %q", port)
	}
	if err := found.Open(); err != nil {
		drv.Close()
		return nil, errgo.Notef(err, "opening %q", found.String())
	}

	name := found.String()
	stopListening, err := gomidi.ListenTo(found, func(msg gomidi.Message, timestampms int32) {
		if !in.Feed(msg) {
			logger.Tracef("dropped %v from %q", msg, name)
		}
	}, gomidi.HandleError(func(err error) {
		logger.Warningf("MIDI input %q: %v", name, err)
	}))
	if err != nil {
		found.Close()
		drv.Close()
		return nil, errgo.Notef(err, "listening to %q", name)
	}
	logger.Infof("MIDI input connected: %q", name)

	return func() {
		stopListening()
		found.Close()
		drv.Close()
		logger.Infof("MIDI input closed: %q", name)
	}, nil
}
