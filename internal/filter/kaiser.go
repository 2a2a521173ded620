package filter

import (
	"math"

	"github.com/tphakala/go-nightcore/internal/mathutil"
)

// sincKernel is a Kaiser-windowed sinc scaled to a cutoff.
//
// The cutoff is a fraction of the input Nyquist frequency. Stretching the
// sinc by 1/cutoff lowers its passband; the window is stretched with it so
// the kernel keeps the same number of zero crossings. halfWidth is the
// stretched support in input samples.
type sincKernel struct {
	cutoff    float64
	halfWidth float64
	beta      float64
	i0Beta    float64
}

func newSincKernel(cutoff float64, radius int, attenuation float64) sincKernel {
	beta := mathutil.KaiserBeta(attenuation)
	return sincKernel{
		cutoff:    cutoff,
		halfWidth: math.Ceil(float64(radius) / cutoff),
		beta:      beta,
		i0Beta:    mathutil.BesselI0(beta),
	}
}

func (k sincKernel) eval(x float64) float64 {
	w := mathutil.KaiserWindow(x/k.halfWidth, k.beta, k.i0Beta)
	if w == 0 {
		return 0
	}
	return k.cutoff * mathutil.Sinc(k.cutoff*x) * w
}
