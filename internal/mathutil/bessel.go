// Package mathutil provides the special functions used to design
// interpolation kernels.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, by summing its power series:
//
//	I₀(x) = Σ ((x/2)^k / k!)²
//
// Every term is positive, so the sum is numerically stable and accurate to
// full float64 precision for the arguments a Kaiser window needs.
func BesselI0(x float64) float64 {
	half := math.Abs(x) / halfDivisor
	sum := 1.0
	term := 1.0

	for k := 1; k < besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < sum*besselEpsilon {
			break
		}
	}

	return sum
}

// KaiserBeta computes the Kaiser window β parameter for a desired stopband
// attenuation in dB.
//
// Formula from Kaiser & Schafer:
//   - For att > 50 dB: β = 0.1102 * (att - 8.7)
//   - For 21 dB ≤ att ≤ 50 dB: β = 0.5842 * (att - 21)^0.4 + 0.07886 * (att - 21)
//   - For att < 21 dB: β = 0 (rectangular window)
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	default:
		return 0.0
	}
}

// KaiserWindow evaluates a continuous Kaiser window at u, where u is the
// position relative to the window half-width (u in [-1, 1]). Values outside
// that range are zero. i0Beta must be BesselI0(beta); it is passed in so
// callers evaluating many points compute it once.
func KaiserWindow(u, beta, i0Beta float64) float64 {
	if u <= -1 || u >= 1 {
		return 0
	}
	return BesselI0(beta*math.Sqrt(1-u*u)) / i0Beta
}

// Sinc returns the normalized sinc function sin(πx)/(πx).
func Sinc(x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
