package nightcore

// DefaultSpeed is the classic nightcore speed-up.
const DefaultSpeed = 1.35

// DefaultChunkFrames is the number of frames Render reads per chunk.
const DefaultChunkFrames = 4096

// Channel constants
const (
	stereoChannels = 2   // Stereo channel count (used by SpeedUpStereo)
	maxChannels    = 256 // Maximum supported channel count
)

// Step limits (input frames per output frame)
const (
	minStep = 1.0 / 256.0
	maxStep = 256.0
)

// Sinc quality presets
const (
	// Low: 8 zero crossings, 60 dB
	lowRadius      = 8
	lowAttenuation = 60.0
	lowRolloff     = 0.90

	// Medium: 16 zero crossings, 80 dB
	mediumRadius      = 16
	mediumAttenuation = 80.0
	mediumRolloff     = 0.93

	// High: 32 zero crossings, 100 dB
	highRadius      = 32
	highAttenuation = 100.0
	highRolloff     = 0.95
)

// Render constants
const (
	// maxEmptyReads is how many consecutive (0, nil) reads Render tolerates
	// before giving up with io.ErrNoProgress.
	maxEmptyReads = 100
)
