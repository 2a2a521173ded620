// Package testutil provides reusable signal generators and assertions for
// resampler tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	KernelTolerance  = 1e-3
)

// Sine returns n samples of a unit-amplitude sine at freq Hz.
func Sine(n int, freq, sampleRate float64) []float64 {
	out := make([]float64, n)
	omega := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = math.Sin(omega * float64(i))
	}
	return out
}

// Ramp returns n samples rising linearly from 0 by step.
func Ramp(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// Interleave interleaves equally long planar channels.
func Interleave(channels ...[]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float64, frames*len(channels))
	for i := range frames {
		for ch, data := range channels {
			out[i*len(channels)+ch] = data[i]
		}
	}
	return out
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
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

// AssertDCGain verifies that the sum of coefficients equals the expected DC gain.
func AssertDCGain(t *testing.T, coeffs []float64, expectedGain, tolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	return assert.InDelta(t, expectedGain, sum, tolerance,
		"DC gain = %f, want %f", sum, expectedGain)
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertSamplesInDelta compares two sample slices element by element and
// reports the first index that differs by more than tolerance.
func AssertSamplesInDelta(t *testing.T, expected, actual []float64, tolerance float64) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected)) {
		return false
	}
	for i := range expected {
		if math.Abs(expected[i]-actual[i]) > tolerance {
			return assert.Fail(t, "samples differ",
				"index %d: expected %f, actual %f (tolerance %e)", i, expected[i], actual[i], tolerance)
		}
	}
	return true
}
