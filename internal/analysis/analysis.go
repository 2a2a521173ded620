// Package analysis provides FFT-based measurements of signals and kernels.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// minSamples is the shortest signal DominantFrequency will analyse.
	minSamples = 8

	// dbFloor keeps MagnitudeDB finite for zero magnitudes.
	dbFloor = 1e-20
)

// DominantFrequency returns the frequency in Hz of the strongest spectral
// peak of samples, excluding DC. The signal is Hann windowed and the peak is
// refined by parabolic interpolation of the log magnitudes around the
// strongest bin. Returns 0 for signals shorter than eight samples.
func DominantFrequency(samples []float64, sampleRate float64) float64 {
	n := len(samples)
	if n < minSamples {
		return 0
	}

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		windowed[i] = v * w
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	peak := 1
	var peakMag float64
	for k := 1; k < len(coeffs)-1; k++ {
		if m := cmplxAbs(coeffs[k]); m > peakMag {
			peak, peakMag = k, m
		}
	}

	a := MagnitudeDB(cmplxAbs(coeffs[peak-1]))
	b := MagnitudeDB(peakMag)
	c := MagnitudeDB(cmplxAbs(coeffs[peak+1]))

	delta := 0.0
	if denom := a - 2*b + c; denom != 0 {
		delta = 0.5 * (a - c) / denom
	}

	return (float64(peak) + delta) * sampleRate / float64(n)
}

// MagnitudeResponse returns the magnitude of the frequency response of an
// FIR at points evenly spaced frequencies from DC to Nyquist inclusive.
func MagnitudeResponse(coeffs []float64, points int) []float64 {
	if points < 2 || len(coeffs) == 0 {
		return nil
	}

	// Oversample the transform until it is at least as long as the filter,
	// then decimate the bins back to the requested grid.
	base := 2 * (points - 1)
	stride := 1
	for base*stride < len(coeffs) {
		stride++
	}
	size := base * stride

	padded := make([]float64, size)
	copy(padded, coeffs)

	fft := fourier.NewFFT(size)
	spectrum := fft.Coefficients(nil, padded)

	resp := make([]float64, points)
	for i := range resp {
		resp[i] = cmplxAbs(spectrum[i*stride])
	}
	return resp
}

// MagnitudeDB converts a linear magnitude to decibels.
func MagnitudeDB(m float64) float64 {
	return 20 * math.Log10(math.Max(m, dbFloor))
}

// PeakInBand returns the largest magnitude in dB of resp between the
// normalized frequencies lo and hi (0 is DC, 1 is Nyquist), as produced by
// MagnitudeResponse.
func PeakInBand(resp []float64, lo, hi float64) float64 {
	peak := math.Inf(-1)
	last := len(resp) - 1
	for i, m := range resp {
		f := float64(i) / float64(last)
		if f < lo || f > hi {
			continue
		}
		peak = math.Max(peak, MagnitudeDB(m))
	}
	return peak
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
