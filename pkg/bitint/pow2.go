// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size FFT frames.

	frame := 1000
	if !bitint.IsPowerOfTwo(frame) {
		frame = bitint.NextPowerOfTwo(frame) // 1024
	}

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of two map to themselves: 8-1 = 0b0111 has length 3 and 1<<3 = 8,
while 9-1 = 0b1000 has length 4 and 1<<4 = 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Sizes below one
// return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has a single bit set, so clearing the lowest set bit leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
