package nightcore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-nightcore/internal/testutil"
)

// sliceSource serves interleaved samples, at most max samples per Read.
type sliceSource struct {
	data     []float64
	rate     int
	channels int
	max      int
	pos      int

	// eofWithData returns io.EOF together with the last samples.
	eofWithData bool
	err         error
	errAfter    int
	empty       bool
}

func (s *sliceSource) SampleRate() int { return s.rate }
func (s *sliceSource) Channels() int   { return s.channels }

func (s *sliceSource) Read(dst []float64) (int, error) {
	if s.empty {
		return 0, nil
	}
	if s.err != nil && s.pos >= s.errAfter {
		return 0, s.err
	}
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}

	n := len(dst)
	if s.max > 0 {
		n = min(n, s.max)
	}
	n = copy(dst[:n], s.data[s.pos:])
	s.pos += n

	if s.eofWithData && s.pos >= len(s.data) {
		return n, io.EOF
	}
	return n, nil
}

type bufferSink struct {
	chunks []AudioBuffer
	err    error
}

func (s *bufferSink) Write(buf AudioBuffer) error {
	if s.err != nil {
		return s.err
	}
	s.chunks = append(s.chunks, buf)
	return nil
}

func (s *bufferSink) samples() []float64 {
	var out []float64
	for _, c := range s.chunks {
		out = append(out, c.Data...)
	}
	return out
}

func TestRender_MatchesEngine(t *testing.T) {
	data := testutil.Interleave(testutil.Sine(10000, 440, 44100), noise(10000, 9))

	for _, eofWithData := range []bool{false, true} {
		src := &sliceSource{data: data, rate: 44100, channels: 2, eofWithData: eofWithData}
		sink := &bufferSink{}

		stats, err := Render(context.Background(), src, sink, RenderOptions{ChunkFrames: 1000})
		require.NoError(t, err)

		want := process(t, mustNew(t, Config{Channels: 2, InputRate: 44100, Speed: DefaultSpeed}), data, 1000)
		assert.Equal(t, want.Data, sink.samples())

		assert.Equal(t, int64(10000), stats.FramesIn)
		assert.Equal(t, int64(want.Frames()), stats.FramesOut)
		assert.Equal(t, 44100, stats.InputRate)
		assert.Equal(t, 44100, stats.OutputRate)
		assert.Equal(t, 2, stats.Channels)
		assert.Equal(t, len(sink.chunks), stats.Chunks)

		for _, c := range sink.chunks {
			assert.Equal(t, 44100, c.SampleRate)
			assert.Equal(t, 2, c.Channels)
			assert.NotZero(t, c.Frames())
		}
	}
}

func TestRender_ShortReads(t *testing.T) {
	data := noise(3000, 10)

	src := &sliceSource{data: data, rate: 22050, channels: 1, max: 37}
	sink := &bufferSink{}
	_, err := Render(context.Background(), src, sink, RenderOptions{Speed: 1.5, Kernel: KernelCubic})
	require.NoError(t, err)

	want := process(t, mustNew(t, Config{Channels: 1, InputRate: 22050, Speed: 1.5, Kernel: KernelCubic}), data, 3000)
	assert.Equal(t, want.Data, sink.samples())
}

func TestRender_Progress(t *testing.T) {
	src := &sliceSource{data: make([]float64, 8192), rate: 44100, channels: 1}

	var calls []RenderStats
	opts := RenderOptions{
		ChunkFrames: 1024,
		Kernel:      KernelLinear,
		Progress:    func(s RenderStats) { calls = append(calls, s) },
	}
	stats, err := Render(context.Background(), src, &bufferSink{}, opts)
	require.NoError(t, err)

	require.NotEmpty(t, calls)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].FramesOut, calls[i-1].FramesOut)
	}
	assert.Equal(t, stats.FramesOut, calls[len(calls)-1].FramesOut)
}

func TestRender_Errors(t *testing.T) {
	errDecode := errors.New("decode failed")
	errDisk := errors.New("disk full")

	tests := []struct {
		name   string
		ctx    func() context.Context
		src    *sliceSource
		sink   *bufferSink
		opts   RenderOptions
		target error
	}{
		{
			name:   "invalid config",
			src:    &sliceSource{data: make([]float64, 100), rate: 0, channels: 1},
			target: ErrInvalidConfig,
		},
		{
			name:   "negative speed",
			src:    &sliceSource{data: make([]float64, 100), rate: 44100, channels: 1},
			opts:   RenderOptions{Speed: -1},
			target: ErrInvalidConfig,
		},
		{
			name:   "source error",
			src:    &sliceSource{data: make([]float64, 10000), rate: 44100, channels: 1, err: errDecode, errAfter: 4096},
			target: errDecode,
		},
		{
			name:   "sink error",
			src:    &sliceSource{data: make([]float64, 10000), rate: 44100, channels: 1},
			sink:   &bufferSink{err: errDisk},
			target: errDisk,
		},
		{
			name:   "partial frame",
			src:    &sliceSource{data: make([]float64, 101), rate: 44100, channels: 2, max: 101},
			target: ErrChannelMismatch,
		},
		{
			name:   "no progress",
			src:    &sliceSource{rate: 44100, channels: 1, empty: true},
			target: io.ErrNoProgress,
		},
		{
			name: "cancelled",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			src:    &sliceSource{data: make([]float64, 100), rate: 44100, channels: 1},
			target: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}
			sink := tt.sink
			if sink == nil {
				sink = &bufferSink{}
			}

			_, err := Render(ctx, tt.src, sink, tt.opts)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestRenderOptions_Config(t *testing.T) {
	src := &sliceSource{rate: 48000, channels: 2}

	cfg := RenderOptions{}.Config(src)
	assert.Equal(t, Config{
		Channels:  2,
		InputRate: 48000,
		Speed:     DefaultSpeed,
		ChunkHint: DefaultChunkFrames,
	}, cfg)

	cfg = RenderOptions{Speed: 1.2, Kernel: KernelCubic, OutputRate: 44100, ChunkFrames: 512}.Config(src)
	assert.InDelta(t, 1.2, cfg.Speed, 0)
	assert.Equal(t, KernelCubic, cfg.Kernel)
	assert.Equal(t, 44100, cfg.OutputRate)
	assert.Equal(t, 512, cfg.ChunkHint)
}
