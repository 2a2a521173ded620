package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-nightcore/internal/simdops"
)

// Params holds parameters for polyphase bank design.
type Params struct {
	// Kind selects the interpolation kernel.
	Kind Kind

	// Phases is the number of fractional offsets tabulated between two
	// input samples. Must be a power of two.
	Phases int

	// Cutoff is the low-pass corner as a fraction of the input Nyquist
	// frequency, in (0, 1]. Sinc only.
	Cutoff float64

	// Radius is the number of sinc zero crossings kept either side of the
	// centre at Cutoff 1. Lower cutoffs widen the kernel proportionally.
	// Sinc only.
	Radius int

	// Attenuation is the stopband attenuation in dB that selects the Kaiser
	// window β. Sinc only.
	Attenuation float64
}

// Validate checks if the bank parameters are valid.
func (p *Params) Validate() error {
	if p.Phases < minPhases || p.Phases > maxPhases {
		return fmt.Errorf("phases must be %d-%d, got %d", minPhases, maxPhases, p.Phases)
	}
	if p.Phases&(p.Phases-1) != 0 {
		return fmt.Errorf("phases must be a power of two, got %d", p.Phases)
	}

	switch p.Kind {
	case KindLinear, KindCubic:
		return nil
	case KindSinc:
	default:
		return fmt.Errorf("unknown kernel %v", p.Kind)
	}

	if !(p.Cutoff > 0 && p.Cutoff <= 1) {
		return fmt.Errorf("cutoff must be in (0, 1], got %v", p.Cutoff)
	}
	if p.Radius < minSincRadius || p.Radius > maxSincRadius {
		return fmt.Errorf("sinc radius must be %d-%d, got %d", minSincRadius, maxSincRadius, p.Radius)
	}
	if p.Attenuation < 0 || math.IsNaN(p.Attenuation) {
		return fmt.Errorf("invalid attenuation: %v dB", p.Attenuation)
	}
	if taps := 2 * int(math.Ceil(float64(p.Radius)/p.Cutoff)); taps > maxTaps {
		return fmt.Errorf("kernel too wide: %d taps (maximum %d)", taps, maxTaps)
	}

	return nil
}

// Bank is a tabulated polyphase interpolation kernel.
//
// For an output at input position t = i + f (i integer, 0 <= f < 1) the
// taps of the row nearest f are applied to inputs i-Offset ... i-Offset+Taps-1.
type Bank struct {
	Kind   Kind
	Phases int
	Taps   int
	Offset int

	// Cutoff and Beta are zero for linear and cubic banks.
	Cutoff float64
	Beta   float64

	eval   func(float64) float64
	coeffs []float64
}

// DesignBank tabulates the kernel described by params.
func DesignBank(params Params) (*Bank, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := &Bank{
		Kind:   params.Kind,
		Phases: params.Phases,
	}

	var halfWidth int
	switch params.Kind {
	case KindLinear:
		halfWidth = linearHalfWidth
		b.eval = linearKernel
	case KindCubic:
		halfWidth = cubicHalfWidth
		b.eval = cubicKernel
	case KindSinc:
		k := newSincKernel(params.Cutoff, params.Radius, params.Attenuation)
		halfWidth = int(k.halfWidth)
		b.eval = k.eval
		b.Cutoff = params.Cutoff
		b.Beta = k.beta
	}

	b.Taps = 2 * halfWidth
	b.Offset = halfWidth - 1
	b.coeffs = make([]float64, (b.Phases+1)*b.Taps)

	ops := simdops.For[float64]()
	for p := 0; p <= b.Phases; p++ {
		row := b.Row(p)
		frac := float64(p) / float64(b.Phases)
		for k := range row {
			row[k] = b.eval(frac + float64(b.Offset-k))
		}

		// Linear and cubic kernels already sum to one; rescaling them would
		// only add rounding error.
		if params.Kind != KindSinc {
			continue
		}
		if sum := ops.Sum(row); math.Abs(sum) > dcGainThreshold {
			ops.Scale(row, row, 1/sum)
		}
	}

	return b, nil
}

// Row returns the taps for phase p in [0, Phases]. The slice aliases the
// bank's storage.
func (b *Bank) Row(p int) []float64 {
	return b.coeffs[p*b.Taps : (p+1)*b.Taps]
}

// Coefficients returns all Phases+1 rows in one flat slice.
func (b *Bank) Coefficients() []float64 {
	return b.coeffs
}

// Latency returns the kernel's look-ahead in input frames.
func (b *Bank) Latency() int {
	return b.Taps - b.Offset - 1
}

// DCGain returns the sum of row p's taps.
func (b *Bank) DCGain(p int) float64 {
	var sum float64
	for _, c := range b.Row(p) {
		sum += c
	}
	return sum
}

// Prototype samples the continuous kernel at 1/Phases spacing across its
// full support and scales it by 1/Phases, giving an FIR at Phases times the
// input rate whose DC gain is approximately one. Used for frequency
// response analysis.
func (b *Bank) Prototype() []float64 {
	half := b.Taps / 2
	n := b.Taps*b.Phases + 1
	proto := make([]float64, n)
	scale := 1 / float64(b.Phases)
	for m := range proto {
		x := float64(m-half*b.Phases) * scale
		proto[m] = b.eval(x) * scale
	}
	return proto
}

// MemoryUsage returns approximate memory usage in bytes.
func (b *Bank) MemoryUsage() int64 {
	return int64(len(b.coeffs)) * bytesPerFloat64
}

const bytesPerFloat64 = 8
