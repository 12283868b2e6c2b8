// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 converts a sample in [-1, 1] to 16-bit PCM. Values outside
// the range are clamped and NaN becomes silence.
func Float32ToInt16(x float32) int16 {
	switch {
	case x != x:
		return 0
	case x >= 1:
		return math.MaxInt16
	case x <= -1:
		return math.MinInt16
	}
	return int16(x * math.MaxInt16)
}

// InterleaveInt16 converts two channels of float samples to interleaved
// 16-bit PCM, appending to dst. The shorter channel limits the output.
func InterleaveInt16(dst []int16, left, right []float32) []int16 {
	n := min(len(left), len(right))
	for i := range n {
		dst = append(dst, Float32ToInt16(left[i]), Float32ToInt16(right[i]))
	}
	return dst
}
