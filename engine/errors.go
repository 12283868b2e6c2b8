// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrInvalidParams is the cause of every Params validation failure.
	ErrInvalidParams = errors.New("invalid generator parameters")
	// ErrUnknownParam is returned for ParamIDs outside the known set.
	ErrUnknownParam = errors.New("unknown parameter")
)
