// SPDX-License-Identifier: EPL-2.0

package control

import "errors"

var (
	// ErrChannelFull is returned when the command channel cannot take the
	// commands of an edit. The edit has not been applied.
	ErrChannelFull = errors.New("command channel full")

	// ErrDisabled is returned by edits made while a blocking command is
	// waiting for its acknowledgement.
	ErrDisabled = errors.New("edits disabled until acknowledged")

	ErrNoGenerator      = errors.New("no such generator")
	ErrInvalidPolyphony = errors.New("invalid polyphony")
)
