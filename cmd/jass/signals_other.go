// SPDX-License-Identifier: EPL-2.0

//go:build !unix

package main

import "os"

var saveSignals []os.Signal
