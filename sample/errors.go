// SPDX-License-Identifier: EPL-2.0

package sample

import "errors"

var (
	// ErrEmpty is returned for files that decode to no frames.
	ErrEmpty = errors.New("sample contains no frames")
	// ErrInvalidRate is returned for sources reporting a non-positive rate.
	ErrInvalidRate = errors.New("sample rate must be positive")
)
