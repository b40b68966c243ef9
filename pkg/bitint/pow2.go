// SPDX-License-Identifier: MIT
/*
Package bitint holds the power-of-two helpers used for transform sizing. The
radix-2 FFT backend only accepts power-of-two lengths, so the analyzer checks
every planned window length here.

All functions are allocation free and constant time.
*/
package bitint

import "math/bits"

// Integer is the set of types the helpers accept.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo[T Integer](n T) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. Values below 1
// return 1. The result overflows to 0 when no such value fits in T.
func NextPowerOfTwo[T Integer](n T) T {
	if n <= 1 {
		return 1
	}
	// n-1 keeps exact powers of two unchanged: 8-1 = 0b111 has length 3.
	return T(1) << bits.Len64(uint64(n-1))
}

// Log2 returns the exponent of a power of two, or -1 for other values.
func Log2[T Integer](n T) int {
	if !IsPowerOfTwo(n) {
		return -1
	}
	return bits.TrailingZeros64(uint64(n))
}
