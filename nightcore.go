package nightcore

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tphakala/go-nightcore/internal/filter"
)

// Common errors returned by the engine.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid nightcore configuration")

	// ErrChannelMismatch indicates a chunk whose channel layout does not
	// match the engine. The engine is left untouched.
	ErrChannelMismatch = errors.New("channel count mismatch")

	// ErrInvalidState indicates an operation that is not allowed in the
	// engine's current state.
	ErrInvalidState = errors.New("invalid engine state")

	// ErrEngineFinalized is returned by Push and Flush after Flush.
	ErrEngineFinalized = fmt.Errorf("%w: engine finalized", ErrInvalidState)

	// ErrEmptyChunk indicates a chunk with no frames. The engine is left
	// untouched.
	ErrEmptyChunk = errors.New("empty chunk")
)

// Kernel selects the interpolation kernel.
type Kernel int

const (
	// KernelSinc is a Kaiser-windowed sinc low-pass. Its cutoff follows the
	// speed so that speeding up does not alias. The zero value.
	KernelSinc Kernel = iota

	// KernelCubic is 4-tap Catmull-Rom interpolation.
	KernelCubic

	// KernelLinear is 2-tap linear interpolation. Fastest, aliases freely.
	KernelLinear
)

var kernelNames = map[Kernel]string{
	KernelSinc:   "sinc",
	KernelCubic:  "cubic",
	KernelLinear: "linear",
}

// String returns the kernel name.
func (k Kernel) String() string {
	if name, ok := kernelNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kernel(%d)", int(k))
}

// ParseKernel parses a kernel name as returned by Kernel.String.
func ParseKernel(s string) (Kernel, error) {
	for k, name := range kernelNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kernel %q", ErrInvalidConfig, s)
}

func (k Kernel) kind() filter.Kind {
	switch k {
	case KernelCubic:
		return filter.KindCubic
	case KernelLinear:
		return filter.KindLinear
	default:
		return filter.KindSinc
	}
}

// Quality selects sinc kernel parameters. Ignored by linear and cubic.
type Quality int

const (
	// QualityHigh keeps 32 zero crossings with 100 dB stopband attenuation.
	// The zero value.
	QualityHigh Quality = iota

	// QualityMedium keeps 16 zero crossings with 80 dB attenuation.
	QualityMedium

	// QualityLow keeps 8 zero crossings with 60 dB attenuation.
	QualityLow
)

var qualityNames = map[Quality]string{
	QualityHigh:   "high",
	QualityMedium: "medium",
	QualityLow:    "low",
}

// String returns the quality name.
func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality parses a quality name as returned by Quality.String.
func ParseQuality(s string) (Quality, error) {
	for q, name := range qualityNames {
		if strings.EqualFold(s, name) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown quality %q", ErrInvalidConfig, s)
}

// qualitySpec holds the sinc design parameters for a Quality.
type qualitySpec struct {
	radius      int
	attenuation float64
	rolloff     float64
}

var qualitySpecs = map[Quality]qualitySpec{
	QualityLow:    {radius: lowRadius, attenuation: lowAttenuation, rolloff: lowRolloff},
	QualityMedium: {radius: mediumRadius, attenuation: mediumAttenuation, rolloff: mediumRolloff},
	QualityHigh:   {radius: highRadius, attenuation: highAttenuation, rolloff: highRolloff},
}

// Config holds engine configuration.
type Config struct {
	// Channels is the number of interleaved channels per frame.
	Channels int

	// InputRate is the sample rate of the input in Hz.
	InputRate int

	// Speed is the playback speed factor. 1.35 is the classic nightcore
	// setting; values below one slow the audio down.
	Speed float64

	// Kernel selects the interpolation kernel. Defaults to KernelSinc.
	Kernel Kernel

	// Quality selects the sinc design. Defaults to QualityHigh.
	Quality Quality

	// Phases is the number of tabulated fractional positions per input
	// sample. Must be a power of two; zero selects 256.
	Phases int

	// OutputRate is the sample rate stamped on emitted audio. Zero keeps
	// InputRate, which is what makes the result play faster. A different
	// rate combines the speed-up with a sample rate conversion.
	OutputRate int

	// ChunkHint is the expected frames per Push. It only presizes buffers.
	ChunkHint int
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}
	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}
	if c.InputRate <= 0 {
		return fmt.Errorf("%w: input rate must be positive", ErrInvalidConfig)
	}
	if c.OutputRate < 0 {
		return fmt.Errorf("%w: output rate must not be negative", ErrInvalidConfig)
	}
	if !(c.Speed > 0) || math.IsInf(c.Speed, 0) {
		return fmt.Errorf("%w: speed must be a positive number, got %v", ErrInvalidConfig, c.Speed)
	}
	if c.ChunkHint < 0 {
		return fmt.Errorf("%w: chunk hint must not be negative", ErrInvalidConfig)
	}
	if _, ok := kernelNames[c.Kernel]; !ok {
		return fmt.Errorf("%w: unknown kernel %v", ErrInvalidConfig, c.Kernel)
	}
	if _, ok := qualitySpecs[c.Quality]; !ok {
		return fmt.Errorf("%w: unknown quality %v", ErrInvalidConfig, c.Quality)
	}

	step := c.Step()
	if step < minStep || step > maxStep {
		return fmt.Errorf("%w: effective step %v out of range (%v to %v)", ErrInvalidConfig, step, minStep, maxStep)
	}

	params := c.bankParams()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// EffectiveRate returns InputRate multiplied by Speed: the rate the input
// would have to be played at to sound like the output.
func (c *Config) EffectiveRate() float64 {
	return float64(c.InputRate) * c.Speed
}

// Step returns the number of input frames consumed per output frame.
func (c *Config) Step() float64 {
	return c.Speed * float64(c.InputRate) / float64(c.outputRate())
}

func (c *Config) outputRate() int {
	if c.OutputRate == 0 {
		return c.InputRate
	}
	return c.OutputRate
}

func (c *Config) phases() int {
	if c.Phases == 0 {
		return filter.DefaultPhases
	}
	return c.Phases
}

func (c *Config) bankParams() filter.Params {
	params := filter.Params{
		Kind:   c.Kernel.kind(),
		Phases: c.phases(),
	}
	if c.Kernel == KernelSinc {
		q := qualitySpecs[c.Quality]
		params.Cutoff = sincCutoff(q.rolloff, c.Step())
		params.Radius = q.radius
		params.Attenuation = q.attenuation
	}
	return params
}

// sincCutoff returns the sinc corner for step. A unit step keeps the full
// band so the kernel reduces to an impulse and the input passes through
// unchanged.
func sincCutoff(rolloff, step float64) float64 {
	if step == 1 {
		return 1
	}
	return rolloff * min(1, 1/step)
}

// State is the lifecycle state of an Engine.
type State int

const (
	// StateUninitialized is the state of a zero-value Engine.
	StateUninitialized State = iota

	// StateReady accepts Push and Flush.
	StateReady

	// StateFinalized is terminal: Flush has been called.
	StateFinalized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AudioBuffer is a block of interleaved float samples.
type AudioBuffer struct {
	// Data holds Frames()*Channels samples, frame by frame.
	Data []float64

	// SampleRate is the playback rate in Hz.
	SampleRate int

	// Channels is the number of samples per frame.
	Channels int
}

// Frames returns the number of whole frames in the buffer.
func (b AudioBuffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Duration returns the playback duration of the buffer.
func (b AudioBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}
