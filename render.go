package nightcore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Source supplies interleaved audio to Render.
type Source interface {
	// SampleRate returns the sample rate in Hz.
	SampleRate() int

	// Channels returns the number of channels per frame.
	Channels() int

	// Read fills dst with up to len(dst) interleaved samples and returns
	// how many it wrote, always a whole number of frames. It returns io.EOF
	// at the end of the stream, possibly together with the final samples.
	Read(dst []float64) (int, error)
}

// Sink receives rendered audio in order.
type Sink interface {
	Write(buf AudioBuffer) error
}

// RenderOptions configures Render. The zero value renders at DefaultSpeed
// with the high quality sinc kernel.
type RenderOptions struct {
	// Speed is the playback speed factor. Zero selects DefaultSpeed.
	Speed float64

	// Kernel and Quality select the interpolation kernel.
	Kernel  Kernel
	Quality Quality

	// Phases is the polyphase table size. Zero selects the default.
	Phases int

	// OutputRate is the rate of the rendered audio. Zero keeps the
	// source rate.
	OutputRate int

	// ChunkFrames is the number of frames read per chunk. Zero selects
	// DefaultChunkFrames.
	ChunkFrames int

	// Progress, if set, is called after every chunk written.
	Progress func(RenderStats)
}

// RenderStats summarises a render.
type RenderStats struct {
	InputRate  int
	OutputRate int
	Channels   int
	FramesIn   int64
	FramesOut  int64
	Chunks     int
	Elapsed    time.Duration
}

// Config returns the engine configuration Render would use for src.
func (o RenderOptions) Config(src Source) Config {
	speed := o.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	return Config{
		Channels:   src.Channels(),
		InputRate:  src.SampleRate(),
		Speed:      speed,
		Kernel:     o.Kernel,
		Quality:    o.Quality,
		Phases:     o.Phases,
		OutputRate: o.OutputRate,
		ChunkHint:  o.chunkFrames(),
	}
}

func (o RenderOptions) chunkFrames() int {
	if o.ChunkFrames <= 0 {
		return DefaultChunkFrames
	}
	return o.ChunkFrames
}

// Render reads src to the end, speeds it up according to opts and writes
// the result to sink in order.
//
// Cancellation is checked between chunks. Render does not close src or
// sink; on error the sink may already have received part of the output.
func Render(ctx context.Context, src Source, sink Sink, opts RenderOptions) (RenderStats, error) {
	start := time.Now()

	cfg := opts.Config(src)
	eng, err := New(cfg)
	if err != nil {
		return RenderStats{}, err
	}

	stats := RenderStats{
		InputRate:  cfg.InputRate,
		OutputRate: cfg.outputRate(),
		Channels:   cfg.Channels,
	}
	update := func() {
		s := eng.Stats()
		stats.FramesIn = s.FramesIn
		stats.FramesOut = s.FramesOut
		stats.Elapsed = time.Since(start)
	}

	write := func(buf AudioBuffer) error {
		if buf.Frames() == 0 {
			return nil
		}
		if err := sink.Write(buf); err != nil {
			return fmt.Errorf("write chunk %d: %w", stats.Chunks, err)
		}
		stats.Chunks++
		if opts.Progress != nil {
			update()
			opts.Progress(stats)
		}
		return nil
	}

	buf := make([]float64, opts.chunkFrames()*cfg.Channels)
	empty := 0

	for {
		if err := ctx.Err(); err != nil {
			update()
			return stats, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			empty = 0
			out, err := eng.Push(AudioBuffer{Data: buf[:n], SampleRate: cfg.InputRate, Channels: cfg.Channels})
			if err != nil {
				update()
				return stats, fmt.Errorf("push: %w", err)
			}
			if err := write(out); err != nil {
				update()
				return stats, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			update()
			return stats, fmt.Errorf("read source: %w", readErr)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				update()
				return stats, fmt.Errorf("read source: %w", io.ErrNoProgress)
			}
		}
	}

	out, err := eng.Flush()
	if err != nil {
		update()
		return stats, err
	}
	if err := write(out); err != nil {
		update()
		return stats, err
	}

	update()
	return stats, nil
}
