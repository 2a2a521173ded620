// Package engine implements the streaming polyphase interpolator behind the
// nightcore resampler.
package engine

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/tphakala/go-nightcore/internal/filter"
	"github.com/tphakala/go-nightcore/internal/pipeline"
	"github.com/tphakala/go-nightcore/internal/simdops"
)

// Errors returned by Stream.
var (
	ErrFlushed         = errors.New("stream already flushed")
	ErrChannelCount    = errors.New("channel count mismatch")
	ErrUnequalChannels = errors.New("channels have different lengths")
)

// Config describes a Stream.
type Config struct {
	// Channels is the number of planar channels processed in lockstep.
	Channels int

	// Step is the number of input frames consumed per output frame.
	// A nightcore speed-up of 1.35 at an unchanged sample rate is Step 1.35.
	Step float64

	// Bank is the interpolation kernel. It is shared read-only and may be
	// used by several streams at once.
	Bank *filter.Bank

	// ChunkHint is the expected number of input frames per Process call.
	// It only presizes buffers.
	ChunkHint int
}

// Stream resamples planar audio by a fixed step using a polyphase bank.
//
// Output frame j sits at input position j*Step. The position is held as an
// integer frame index plus a 32-bit fraction; the top bits of the fraction
// select a bank row and the remaining bits interpolate linearly towards the
// next row. Every channel shares the same position, so channels are
// processed independently with identical phase.
//
// Because each output depends only on its absolute position and the input
// samples around it, splitting the input into chunks of any size produces
// bit-identical output.
//
// Type parameter F must be float32 or float64.
//
// Stream is not safe for concurrent use.
type Stream[F simdops.Float] struct {
	channels int
	step     float64
	bank     *filter.Bank
	rows     [][]F
	taps     int
	offset   int
	latency  int

	phaseShift    uint
	residualMask  uint64
	residualScale F

	stepInt  int64
	stepFrac uint64

	// Phase accumulator: next output is at pos + frac/2^32.
	pos  int64
	frac uint64

	history []*pipeline.History[F]
	out     [][]F

	started  bool
	flushed  bool
	framesIn int64
	outTotal int64

	ops *simdops.Ops[F]
}

// NewStream creates a stream for the given configuration.
func NewStream[F simdops.Float](cfg Config) (*Stream[F], error) {
	if cfg.Channels < 1 || cfg.Channels > maxChannels {
		return nil, fmt.Errorf("channels must be 1-%d, got %d", maxChannels, cfg.Channels)
	}
	if math.IsNaN(cfg.Step) || cfg.Step < minStep || cfg.Step > maxStep {
		return nil, fmt.Errorf("step must be in [%v, %v], got %v", minStep, maxStep, cfg.Step)
	}
	if cfg.Bank == nil {
		return nil, errors.New("bank is nil")
	}

	bank := cfg.Bank
	phaseBits := uint(bits.TrailingZeros(uint(bank.Phases)))
	phaseShift := fracBits - phaseBits

	stepFixed := uint64(math.Round(cfg.Step * float64(fracOne)))

	s := &Stream[F]{
		channels:      cfg.Channels,
		step:          cfg.Step,
		bank:          bank,
		rows:          make([][]F, bank.Phases+1),
		taps:          bank.Taps,
		offset:        bank.Offset,
		latency:       bank.Latency(),
		phaseShift:    phaseShift,
		residualMask:  (uint64(1) << phaseShift) - 1,
		residualScale: F(1 / float64(uint64(1)<<phaseShift)),
		stepInt:       int64(stepFixed >> fracBits),
		stepFrac:      stepFixed & fracMask,
		history:       make([]*pipeline.History[F], cfg.Channels),
		out:           make([][]F, cfg.Channels),
		ops:           simdops.For[F](),
	}

	for p := range s.rows {
		row := make([]F, s.taps)
		simdops.Convert(row, bank.Row(p))
		s.rows[p] = row
	}

	hint := cfg.ChunkHint
	if hint <= 0 {
		hint = defaultChunkHint
	}
	for ch := range s.history {
		s.history[ch] = pipeline.NewHistory[F](hint+2*s.taps, -int64(s.offset))
		s.out[ch] = make([]F, 0, s.outputEstimate(hint))
	}

	return s, nil
}

// Process consumes one planar chunk and returns every output frame that the
// buffered input now fully determines. Input that cannot yet complete an
// output frame is kept for the next call.
//
// The returned slices alias internal buffers and are valid until the next
// call to Process, Flush or Reset.
func (s *Stream[F]) Process(input [][]F) ([][]F, error) {
	if s.flushed {
		return nil, ErrFlushed
	}
	if len(input) != s.channels {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrChannelCount, len(input), s.channels)
	}
	n := len(input[0])
	for ch := 1; ch < s.channels; ch++ {
		if len(input[ch]) != n {
			return nil, fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrUnequalChannels, ch, len(input[ch]), n)
		}
	}

	s.resetOutput()
	if n == 0 {
		return s.out, nil
	}

	if !s.started {
		// Edge-pad the start by repeating the first sample.
		for ch, h := range s.history {
			h.AppendRepeat(input[ch][0], s.offset)
		}
		s.started = true
	}

	for ch, h := range s.history {
		h.Append(input[ch])
	}
	s.framesIn += int64(n)

	s.generate(s.framesIn - 1 - int64(s.latency))
	return s.out, nil
}

// Flush pads the end of the stream by repeating the last sample and emits
// every remaining output frame whose position lies before the end of the
// input. The stream is terminal afterwards until Reset.
//
// The returned slices alias internal buffers.
func (s *Stream[F]) Flush() ([][]F, error) {
	if s.flushed {
		return nil, ErrFlushed
	}
	s.flushed = true
	s.resetOutput()

	if !s.started {
		return s.out, nil
	}

	for _, h := range s.history {
		h.AppendRepeat(h.Last(), s.latency)
	}
	s.generate(s.framesIn - 1)
	return s.out, nil
}

// generate emits outputs while the integer position is at most limit.
func (s *Stream[F]) generate(limit int64) {
	dot := s.ops.DotProductUnsafe

	for s.pos <= limit {
		p := s.frac >> s.phaseShift
		r := F(s.frac&s.residualMask) * s.residualScale
		lo := s.rows[p]
		hi := s.rows[p+1]
		from := s.pos - int64(s.offset)

		for ch, h := range s.history {
			win := h.Window(from, s.taps)
			a := dot(win, lo)
			b := dot(win, hi)
			s.out[ch] = append(s.out[ch], a+r*(b-a))
		}

		s.frac += s.stepFrac
		s.pos += s.stepInt + int64(s.frac>>fracBits)
		s.frac &= fracMask
	}

	s.outTotal += int64(len(s.out[0]))

	keep := s.pos - int64(s.offset)
	for _, h := range s.history {
		h.DiscardBefore(keep)
	}
}

func (s *Stream[F]) resetOutput() {
	for ch := range s.out {
		s.out[ch] = s.out[ch][:0]
	}
}

func (s *Stream[F]) outputEstimate(frames int) int {
	return int(math.Ceil(float64(frames)/s.step)) + outputMargin
}

// Reset clears all state, returning the stream to its freshly created
// condition. Buffers are retained.
func (s *Stream[F]) Reset() {
	for _, h := range s.history {
		h.Reset(-int64(s.offset))
	}
	s.resetOutput()
	s.pos = 0
	s.frac = 0
	s.started = false
	s.flushed = false
	s.framesIn = 0
	s.outTotal = 0
}

// Channels returns the number of channels.
func (s *Stream[F]) Channels() int { return s.channels }

// Step returns the input frames consumed per output frame.
func (s *Stream[F]) Step() float64 { return s.step }

// Latency returns how many input frames beyond an output's position must be
// buffered before that output can be produced.
func (s *Stream[F]) Latency() int { return s.latency }

// Bank returns the interpolation kernel.
func (s *Stream[F]) Bank() *filter.Bank { return s.bank }

// Flushed reports whether Flush has been called.
func (s *Stream[F]) Flushed() bool { return s.flushed }

// FramesIn returns the number of input frames consumed.
func (s *Stream[F]) FramesIn() int64 { return s.framesIn }

// FramesOut returns the number of output frames produced.
func (s *Stream[F]) FramesOut() int64 { return s.outTotal }

// ExpectedOutput returns the number of frames a fully drained stream of
// frames input frames produces: the count of output positions j*Step that
// fall before the end of the input.
func (s *Stream[F]) ExpectedOutput(frames int64) int64 {
	if frames <= 0 {
		return 0
	}
	// positions j*step < frames  <=>  j < frames/step, evaluated in 128 bits
	stepFixed := uint64(s.stepInt)<<fracBits | s.stepFrac
	hi, lo := bits.Mul64(uint64(frames), fracOne)
	lo, carry := bits.Add64(lo, stepFixed-1, 0)
	hi += carry
	if hi >= stepFixed {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, stepFixed)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}
