// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestRemap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		x, m0, M0, m1, M1 float32
		want              float32
	}{
		{name: "start of range", x: 0, m0: 0, M0: 100, m1: 0, M1: 1, want: 0},
		{name: "midpoint", x: 50, m0: 0, M0: 100, m1: 0, M1: 1, want: 0.5},
		{name: "end of range", x: 100, m0: 0, M0: 100, m1: 0, M1: 1, want: 1},
		{name: "offset domain", x: 950, m0: 900, M0: 1000, m1: 1, M1: 0, want: 0.5},
		{name: "flat target", x: 930, m0: 900, M0: 1000, m1: 1, M1: 1, want: 1},
		{name: "negative range", x: 1, m0: 0, M0: 4, m1: -1, M1: 1, want: -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Remap(tt.x, tt.m0, tt.M0, tt.m1, tt.M1)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Remap() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRemap_ZeroAllocs verifies no heap allocations
func TestRemap_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	allocs := testing.AllocsPerRun(1000, func() {
		_ = Remap(10, 0, 100, 0, 1)
	})

	if allocs > 0 {
		t.Errorf("Remap allocated %v times, want 0", allocs)
	}
}
