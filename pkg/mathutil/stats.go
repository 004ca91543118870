// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (0 < p <= 1) of the given values
// using the nearest-rank method. Nearest rank keeps the result equal to an
// element of the input, so repeatedly capping a series at a percentile is
// stable. The input slice is not modified. Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank > len(sorted)-1 {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

// ClampNonNegative clips negative values to zero.
func ClampNonNegative(val float64) float64 {
	if val < 0 {
		return 0
	}
	return val
}

// WithinTolerance checks if two values are within a specified tolerance.
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
