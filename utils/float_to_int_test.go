// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"slices"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{"zero", 0, 0},
		{"max positive", 1, math.MaxInt16},
		{"max negative", -1, math.MinInt16},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16383},
		{"small positive", 0.001, 32},
		{"clamp over max", 1.5, math.MaxInt16},
		{"clamp under min", -3, math.MinInt16},
		{"positive infinity", float32(math.Inf(1)), math.MaxInt16},
		{"nan", float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestInterleaveInt16(t *testing.T) {
	t.Parallel()

	left := []float32{0, 1, -1}
	right := []float32{0.5, -0.5}

	got := InterleaveInt16(nil, left, right)
	want := []int16{0, 16383, math.MaxInt16, -16383}
	if !slices.Equal(got, want) {
		t.Errorf("InterleaveInt16() = %v, want %v", got, want)
	}

	// Appends after existing content.
	got = InterleaveInt16([]int16{7}, []float32{0}, []float32{0})
	if !slices.Equal(got, []int16{7, 0, 0}) {
		t.Errorf("InterleaveInt16() with prefix = %v", got)
	}
}
