// Package safemath provides overflow checked unsigned arithmetic.
package safemath

import (
	"errors"
	"math/bits"
)

var ErrOverflow = errors.New("math overflow")

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrOverflow when b > a.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

// Inc returns a+1 or ErrOverflow.
func Inc(a uint64) (uint64, error) {
	return Add(a, 1)
}
