package audioio

import (
	"fmt"
	"math"
)

// pcmScale returns the factor that maps a signed sample of the given bit
// depth into [-1, 1).
func pcmScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitDepth8, bitDepth16, bitDepth24, bitDepth32:
		return 1 / float64(uint64(1)<<(bitDepth-1)), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}

// pcmFullScale returns 2^(bitDepth-1), the magnitude of the most negative
// sample value at bitDepth.
func pcmFullScale(bitDepth int) float64 {
	return float64(uint64(1) << (bitDepth - 1))
}

// quantize converts a float sample to a signed integer sample at the given
// full scale, the inverse of the decoders' scaling. Values outside the
// representable range are clamped; NaN becomes silence.
func quantize(v, fullScale float64) int {
	if math.IsNaN(v) {
		return 0
	}
	x := math.Round(v * fullScale)
	return int(math.Max(-fullScale, math.Min(fullScale-1, x)))
}
