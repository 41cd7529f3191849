// Package testutil provides reusable test helper functions for display remap tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	CurveTolerance   = 1e-9
	PeakTolerance    = 1e-12
	// Float32Tolerance covers a round trip through float32 storage.
	Float32Tolerance = 1e-6
)

// AssertOddSymmetric verifies that f(-x) == -f(x) for every x in xs.
func AssertOddSymmetric(t *testing.T, f func(float64) float64, xs []float64, tolerance float64) bool {
	t.Helper()
	for _, x := range xs {
		if !assert.InDelta(t, -f(x), f(-x), tolerance,
			"not odd-symmetric at x=%g: f(-x)=%g, -f(x)=%g", x, f(-x), -f(x)) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically non-decreasing.
func AssertMonotonic(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertAllPositiveZero verifies that every element is +0.
func AssertAllPositiveZero(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 || math.Signbit(v) {
			return assert.Fail(t, "not +0", "s[%d]=%g", i, v)
		}
	}
	return true
}

// AssertPeak verifies that max(|s|) equals want within tolerance.
func AssertPeak(t *testing.T, s []float64, want, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	return assert.InDelta(t, want, Peak(s), tolerance, msgAndArgs...)
}

// Peak returns max(|s|), or 0 for an empty slice.
func Peak(s []float64) float64 {
	var peak float64
	for _, v := range s {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// Float32s converts float64 test fixtures into float32 sample data.
func Float32s(values ...float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

// Impulse returns a decaying test impulse response of n samples with the given
// peak amplitude at index 0.
func Impulse(n int, peak float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		decay := math.Exp(-float64(i) / float64(n) * 6)
		sign := 1.0
		if i%2 == 1 {
			sign = -1.0
		}
		out[i] = float32(peak * decay * sign)
	}
	return out
}
