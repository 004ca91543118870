package mathutil

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"Empty slice", nil, 0.99, 0},
		{"Single value", []float64{42}, 0.99, 42},
		{"P99 below 100 samples returns max", []float64{1, 2, 3, 4, 5}, 0.99, 5},
		{"Median of odd count", []float64{3, 1, 2}, 0.5, 2},
		{"P zero returns min", []float64{5, 1, 3}, 0, 1},
		{"P one returns max", []float64{5, 1, 3}, 1, 5},
		{"Unsorted input", []float64{10, 2, 8, 4}, 0.25, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Percentile(tt.values, tt.p)
			if result != tt.expected {
				t.Errorf("Percentile(%v, %v) = %v, expected %v", tt.values, tt.p, result, tt.expected)
			}
		})
	}
}

func TestPercentileHundredSamples(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1) // 1..100
	}
	// Nearest rank: ceil(0.99*100)-1 = 98, i.e. the 99th value.
	if got := Percentile(values, 0.99); got != 99 {
		t.Errorf("Percentile(1..100, 0.99) = %v, expected 99", got)
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 0.5)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("Percentile mutated its input: %v", values)
	}
}

func TestClampNonNegative(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Negative clips to zero", -5, 0},
		{"Zero stays zero", 0, 0},
		{"Positive unchanged", 7.5, 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampNonNegative(tt.input); got != tt.expected {
				t.Errorf("ClampNonNegative(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(1.0, 1.0000001, 1e-6) {
		t.Error("expected values within tolerance")
	}
	if WithinTolerance(1.0, 1.1, 1e-6) {
		t.Error("expected values outside tolerance")
	}
}

func TestMinMax(t *testing.T) {
	if Min(2, 3) != 2 || Min(3, 2) != 2 {
		t.Error("Min returned wrong value")
	}
	if Max(2, 3) != 3 || Max(3, 2) != 3 {
		t.Error("Max returned wrong value")
	}
	if !math.IsInf(Max(1, math.Inf(1)), 1) {
		t.Error("Max with +Inf should return +Inf")
	}
}
