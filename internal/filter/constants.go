package filter

// Kernel support, in input samples either side of the output position.
const (
	linearHalfWidth = 1
	cubicHalfWidth  = 2
)

// Bank limits
const (
	minPhases = 2
	maxPhases = 4096

	// DefaultPhases quantises the fractional offset to 8 bits.
	DefaultPhases = 256

	minSincRadius = 2
	maxSincRadius = 256

	// maxTaps bounds the bank width when a low cutoff stretches the kernel.
	maxTaps = 8192
)

// dcGainThreshold guards row normalisation against a degenerate row.
const dcGainThreshold = 1e-12
