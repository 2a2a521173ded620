package nightcore

import (
	"fmt"

	"github.com/tphakala/go-nightcore/internal/engine"
	"github.com/tphakala/go-nightcore/internal/filter"
)

// Engine is a streaming nightcore resampler.
//
// Push interleaved chunks in order and write out whatever each call
// returns, then call Flush once to drain the tail. Output is identical no
// matter how the input is split into chunks.
//
// The zero value is an uninitialized engine whose Push and Flush fail with
// ErrInvalidState; use New. An Engine is not safe for concurrent use.
type Engine struct {
	cfg    Config
	bank   *filter.Bank
	stream *engine.Stream[float64]
	state  State

	// planar is deinterleave scratch reused across pushes.
	planar [][]float64
}

// Stats reports engine throughput.
type Stats struct {
	// FramesIn is the number of input frames accepted.
	FramesIn int64

	// FramesOut is the number of output frames emitted.
	FramesOut int64
}

// Info describes the kernel in use.
type Info struct {
	// Kernel is the interpolation kernel.
	Kernel Kernel

	// Taps is the number of input frames weighted per output frame.
	Taps int

	// Phases is the number of tabulated fractional positions.
	Phases int

	// Cutoff is the sinc corner relative to the input Nyquist frequency.
	// Zero for linear and cubic.
	Cutoff float64

	// Latency is the kernel look-ahead in input frames.
	Latency int

	// MemoryUsage is the approximate coefficient memory in bytes.
	MemoryUsage int64
}

// New creates an engine with the specified configuration. The kernel is
// designed up front; no partially built engine is ever returned.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bank, err := filter.DesignBank(cfg.bankParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	stream, err := engine.NewStream[float64](engine.Config{
		Channels:  cfg.Channels,
		Step:      cfg.Step(),
		Bank:      bank,
		ChunkHint: cfg.ChunkHint,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Engine{
		cfg:    cfg,
		bank:   bank,
		stream: stream,
		state:  StateReady,
		planar: make([][]float64, cfg.Channels),
	}
	return e, nil
}

// NewEngine creates an engine with the default kernel and quality.
func NewEngine(channels, inputRate int, speed float64) (*Engine, error) {
	return New(Config{
		Channels:  channels,
		InputRate: inputRate,
		Speed:     speed,
	})
}

func (e *Engine) checkState() error {
	if e == nil || e.state == StateUninitialized {
		return fmt.Errorf("%w: engine not initialized", ErrInvalidState)
	}
	if e.state == StateFinalized {
		return ErrEngineFinalized
	}
	return nil
}

// Push consumes a chunk of interleaved frames and returns every output frame
// it completes. Input the kernel cannot use yet is retained, so a short
// chunk may legitimately produce no output.
//
// A chunk with the wrong channel count or a partial trailing frame fails
// with ErrChannelMismatch, and an empty chunk with ErrEmptyChunk; neither
// changes the engine. The chunk's SampleRate is not checked.
//
// The returned buffer is newly allocated and owned by the caller.
func (e *Engine) Push(chunk AudioBuffer) (AudioBuffer, error) {
	if err := e.checkState(); err != nil {
		return AudioBuffer{}, err
	}
	if chunk.Channels != e.cfg.Channels {
		return AudioBuffer{}, fmt.Errorf("%w: chunk has %d channels, engine has %d",
			ErrChannelMismatch, chunk.Channels, e.cfg.Channels)
	}
	if len(chunk.Data)%e.cfg.Channels != 0 {
		return AudioBuffer{}, fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames",
			ErrChannelMismatch, len(chunk.Data), e.cfg.Channels)
	}
	if len(chunk.Data) == 0 {
		return AudioBuffer{}, ErrEmptyChunk
	}

	e.deinterleave(chunk.Data)
	out, err := e.stream.Process(e.planar)
	if err != nil {
		return AudioBuffer{}, fmt.Errorf("process chunk: %w", err)
	}
	return e.interleave(out), nil
}

// Flush emits the remaining output, padding the end of the input by
// repeating its last frame. The engine is finalized afterwards and any
// further Push or Flush fails with ErrEngineFinalized.
//
// The returned buffer is newly allocated and owned by the caller.
func (e *Engine) Flush() (AudioBuffer, error) {
	if err := e.checkState(); err != nil {
		return AudioBuffer{}, err
	}

	out, err := e.stream.Flush()
	e.state = StateFinalized
	if err != nil {
		return AudioBuffer{}, fmt.Errorf("flush: %w", err)
	}
	return e.interleave(out), nil
}

func (e *Engine) deinterleave(data []float64) {
	channels := e.cfg.Channels
	frames := len(data) / channels

	for ch := range e.planar {
		if cap(e.planar[ch]) < frames {
			e.planar[ch] = make([]float64, frames)
		}
		e.planar[ch] = e.planar[ch][:frames]
	}

	if channels == 1 {
		copy(e.planar[0], data)
		return
	}
	for i := range frames {
		frame := data[i*channels : (i+1)*channels]
		for ch, v := range frame {
			e.planar[ch][i] = v
		}
	}
}

func (e *Engine) interleave(planar [][]float64) AudioBuffer {
	channels := len(planar)
	frames := len(planar[0])
	data := make([]float64, frames*channels)

	if channels == 1 {
		copy(data, planar[0])
	} else {
		for ch, samples := range planar {
			for i, v := range samples {
				data[i*channels+ch] = v
			}
		}
	}

	return AudioBuffer{
		Data:       data,
		SampleRate: e.cfg.outputRate(),
		Channels:   channels,
	}
}

// State returns the lifecycle state. Safe on a nil engine.
func (e *Engine) State() State {
	if e == nil {
		return StateUninitialized
	}
	return e.state
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Latency returns the kernel look-ahead in input frames: how much input
// beyond an output frame's position must arrive before it is emitted.
func (e *Engine) Latency() int {
	if e == nil || e.stream == nil {
		return 0
	}
	return e.stream.Latency()
}

// Stats returns frame counters.
func (e *Engine) Stats() Stats {
	if e == nil || e.stream == nil {
		return Stats{}
	}
	return Stats{
		FramesIn:  e.stream.FramesIn(),
		FramesOut: e.stream.FramesOut(),
	}
}

// ExpectedFrames returns the exact number of frames the engine emits in
// total for frames input frames.
func (e *Engine) ExpectedFrames(frames int64) int64 {
	if e == nil || e.stream == nil {
		return 0
	}
	return e.stream.ExpectedOutput(frames)
}

// Info describes the kernel in use.
func (e *Engine) Info() Info {
	if e == nil || e.bank == nil {
		return Info{}
	}
	return Info{
		Kernel:      e.cfg.Kernel,
		Taps:        e.bank.Taps,
		Phases:      e.bank.Phases,
		Cutoff:      e.bank.Cutoff,
		Latency:     e.bank.Latency(),
		MemoryUsage: e.bank.MemoryUsage(),
	}
}
