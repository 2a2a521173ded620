package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-nightcore/internal/testutil"
)

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		freq float64
		rate float64
	}{
		{440, 44100},
		{660, 44100},
		{1000, 48000},
		{5123, 44100},
	}

	for _, tt := range tests {
		signal := testutil.Sine(16384, tt.freq, tt.rate)
		got := DominantFrequency(signal, tt.rate)
		assert.InDelta(t, tt.freq, got, 1.0, "%v Hz at %v", tt.freq, tt.rate)
	}
}

func TestDominantFrequency_TooShort(t *testing.T) {
	assert.Zero(t, DominantFrequency([]float64{1, 2, 3}, 44100))
	assert.Zero(t, DominantFrequency(nil, 44100))
}

func TestMagnitudeResponse(t *testing.T) {
	t.Run("impulse is flat", func(t *testing.T) {
		resp := MagnitudeResponse([]float64{1}, 65)
		require.Len(t, resp, 65)
		for _, m := range resp {
			assert.InDelta(t, 1.0, m, 1e-12)
		}
	})

	t.Run("two-tap average", func(t *testing.T) {
		resp := MagnitudeResponse([]float64{0.5, 0.5}, 33)
		require.Len(t, resp, 33)
		assert.InDelta(t, 1.0, resp[0], 1e-12)
		assert.InDelta(t, math.Sqrt2/2, resp[16], 1e-12)
		assert.InDelta(t, 0.0, resp[32], 1e-12)
	})

	t.Run("filter longer than grid", func(t *testing.T) {
		coeffs := make([]float64, 100)
		coeffs[0] = 1
		resp := MagnitudeResponse(coeffs, 9)
		require.Len(t, resp, 9)
		for _, m := range resp {
			assert.InDelta(t, 1.0, m, 1e-12)
		}
	})

	t.Run("degenerate", func(t *testing.T) {
		assert.Nil(t, MagnitudeResponse(nil, 16))
		assert.Nil(t, MagnitudeResponse([]float64{1}, 1))
	})
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), 1e-12)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), 1e-12)
	assert.InDelta(t, -400.0, MagnitudeDB(0), 1e-9)
}

func TestPeakInBand(t *testing.T) {
	resp := MagnitudeResponse([]float64{0.5, 0.5}, 101)
	assert.InDelta(t, 0.0, PeakInBand(resp, 0, 1), 1e-9)
	assert.Less(t, PeakInBand(resp, 0.9, 1), -15.0)
	assert.True(t, math.IsInf(PeakInBand(resp, 2, 3), -1))
}

func TestRMS(t *testing.T) {
	assert.Zero(t, RMS(nil))
	assert.InDelta(t, 0.5, RMS([]float64{0.5, -0.5, 0.5}), 1e-15)
	assert.InDelta(t, math.Sqrt2/2, RMS(testutil.Sine(44100, 100, 44100)), 1e-3)
}
