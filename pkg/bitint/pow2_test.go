// SPDX-License-Identifier: MIT
package bitint

import (
	"fmt"
	"math"
	"testing"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{-10, 1},     // Negative number
		{0, 1},       // Zero
		{1, 1},       // Smallest power
		{8, 8},       // Already power of two
		{10, 16},     // Not power of two
		{1000, 1024}, // Typical chunk size
		{3, 4},       // Small non-power
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d→%d", tt.n, tt.expected), func(t *testing.T) {
			if got := NextPowerOfTwo(tt.n); got != tt.expected {
				t.Errorf("NextPowerOfTwo(%d) = %d, expected %d", tt.n, got, tt.expected)
			}
		})
	}
}

func TestNextPowerOfTwoTypes(t *testing.T) {
	if got := NextPowerOfTwo(int32(1023)); got != 1024 {
		t.Errorf("int32: got %d", got)
	}
	if got := NextPowerOfTwo(uint16(300)); got != 512 {
		t.Errorf("uint16: got %d", got)
	}
	if got := NextPowerOfTwo(int64(1) << 40); got != 1<<40 {
		t.Errorf("int64: got %d", got)
	}
	// No power of two above 200 fits in a uint8.
	if got := NextPowerOfTwo(uint8(200)); got != 0 {
		t.Errorf("uint8 overflow: got %d, want 0", got)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n        int
		expected bool
	}{
		{-8, false},
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{1024, true},
		{1536, false},
		{math.MaxInt, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			if got := IsPowerOfTwo(tt.n); got != tt.expected {
				t.Errorf("IsPowerOfTwo(%d) = %v, expected %v", tt.n, got, tt.expected)
			}
		})
	}

	if !IsPowerOfTwo(uint32(1 << 31)) {
		t.Error("IsPowerOfTwo(1<<31) = false for uint32")
	}
}

func TestLog2(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{1, 0},
		{2, 1},
		{1024, 10},
		{1000, -1},
		{0, -1},
	}
	for _, tt := range tests {
		if got := Log2(tt.n); got != tt.expected {
			t.Errorf("Log2(%d) = %d, expected %d", tt.n, got, tt.expected)
		}
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	n := 1000
	for b.Loop() {
		_ = NextPowerOfTwo(n)
	}
}

func BenchmarkIsPowerOfTwo(b *testing.B) {
	n := 4096
	for b.Loop() {
		_ = IsPowerOfTwo(n)
	}
}
