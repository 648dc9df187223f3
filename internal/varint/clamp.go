// Package varint holds small generic numeric helpers used by the container
// package: clamping delete-range counts and fill-factor comparisons against
// their bounds.
package varint

import "golang.org/x/exp/constraints"

// Clamp constrains v to [lo, hi].
func Clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AtLeast returns the larger of v and lo.
func AtLeast[T constraints.Integer](v, lo T) T {
	if v < lo {
		return lo
	}
	return v
}

// Fits reports whether count entries fit within a segment whose current
// size is size, against the advisory fill factor.
func Fits[T constraints.Integer](size, count, fill T) bool {
	return size+count <= fill
}
