// Package filter designs the polyphase coefficient banks used by the
// nightcore resampling engine.
//
// A bank tabulates an interpolation kernel at Phases+1 evenly spaced
// fractional offsets. Row p holds the taps for an output that falls
// p/Phases of the way between two input samples; the final row (p ==
// Phases) lets the engine interpolate linearly between neighbouring rows
// without wrapping.
package filter

import (
	"fmt"
	"math"
)

// Kind selects the interpolation kernel.
type Kind int

const (
	// KindLinear is 2-tap linear interpolation.
	KindLinear Kind = iota

	// KindCubic is 4-tap Catmull-Rom (Hermite) interpolation.
	KindCubic

	// KindSinc is a Kaiser-windowed sinc low-pass interpolator.
	KindSinc
)

// String returns the lower-case kernel name.
func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindCubic:
		return "cubic"
	case KindSinc:
		return "sinc"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Catmull-Rom is the Keys cubic with a = -0.5.
const keysA = -0.5

// linearKernel is the triangle function.
func linearKernel(x float64) float64 {
	ax := math.Abs(x)
	if ax >= linearHalfWidth {
		return 0
	}
	return 1 - ax
}

// cubicKernel is the Keys cubic convolution kernel.
func cubicKernel(x float64) float64 {
	ax := math.Abs(x)
	switch {
	case ax < 1:
		return ((keysA+2)*ax-(keysA+3))*ax*ax + 1
	case ax < cubicHalfWidth:
		return ((keysA*ax-5*keysA)*ax+8*keysA)*ax - 4*keysA
	default:
		return 0
	}
}
