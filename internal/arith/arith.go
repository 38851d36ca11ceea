// Package arith holds the small integer helpers used when combining
// sub-circuit periods.
package arith

import (
	"errors"
	"math/bits"
)

// ErrOverflow is returned when a least common multiple does not fit in
// a uint64.
var ErrOverflow = errors.New("lcm overflows uint64")

// GCD returns the greatest common divisor of a and b using Euclid's algorithm.
//
//	GCD(a, 0) = a
//	GCD(a, b) = GCD(b, a mod b)
func GCD(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b.
// Divides before multiplying to keep intermediates small.
// LCM(0, 0) is defined as 0, and LCM(n, 0) is 0 for any n.
//
// Returns ErrOverflow if the result exceeds the uint64 range.
func LCM(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(a, b/GCD(a, b))
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// LCMAll left-folds LCM over values. An empty input yields 1, the identity.
// The first overflowing step stops the fold with ErrOverflow.
func LCMAll(values ...uint64) (uint64, error) {
	acc := uint64(1)
	for i, v := range values {
		if i == 0 {
			acc = v
			continue
		}
		var err error
		if acc, err = LCM(acc, v); err != nil {
			return 0, err
		}
	}
	return acc, nil
}
