package engine

// Fixed-point phase accumulator
const (
	// fracBits is the width of the fractional part of the phase. Positions
	// are tracked as an integer input index plus a 32-bit fraction, so the
	// output position never drifts with chunking.
	fracBits = 32
	fracOne  = uint64(1) << fracBits
	fracMask = fracOne - 1
)

// Step limits (input frames consumed per output frame)
const (
	minStep = 1.0 / 256.0
	maxStep = 256.0
)

// Channel limits
const (
	maxChannels = 256
)

// Output sizing
const (
	// outputMargin covers fixed-point rounding when presizing output buffers.
	outputMargin = 2

	// defaultChunkHint presizes buffers when the caller gives no hint.
	defaultChunkHint = 4096
)
