// SPDX-License-Identifier: EPL-2.0

package main

import (
	"strconv"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gopkg.in/errgo.v1"

	"github.com/ik5/jass/driver"
)

const defaultVelocity = 100

// parseNotes turns a list such as "36,38:90,42" into note-on and note-off
// messages on channel 0. The notes are spread evenly over frames frames,
// each held for half of its slot.
func parseNotes(spec string, frames int) ([]driver.Timed, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	fields := strings.Split(spec, ",")
	slot := frames / len(fields)
	msgs := make([]driver.Timed, 0, 2*len(fields))
	for i, f := range fields {
		keyStr, velStr, hasVel := strings.Cut(strings.TrimSpace(f), ":")
		key, err := midiValue(keyStr)
		if err != nil {
			return nil, errgo.Notef(err, "bad note %q", f)
		}
		vel := uint8(defaultVelocity)
		if hasVel {
			if vel, err = midiValue(velStr); err != nil {
				return nil, errgo.Notef(err, "bad velocity in %q", f)
			}
		}

		start := i * slot
		msgs = append(msgs,
			driver.Timed{Frame: start, Message: gomidi.NoteOn(0, key, vel)},
			driver.Timed{Frame: start + slot/2, Message: gomidi.NoteOff(0, key)},
		)
	}
	return msgs, nil
}

func midiValue(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 7)
	if err != nil {
		return 0, errgo.Mask(err)
	}
	return uint8(v), nil
}
