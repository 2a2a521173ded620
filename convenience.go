package nightcore

import (
	"fmt"

	"github.com/tphakala/go-nightcore/internal/engine"
	"github.com/tphakala/go-nightcore/internal/filter"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000
)

// SpeedUp is a one-shot helper that runs buf through a fresh engine with
// the default kernel and returns the complete result.
func SpeedUp(buf AudioBuffer, speed float64) (AudioBuffer, error) {
	e, err := NewEngine(buf.Channels, buf.SampleRate, speed)
	if err != nil {
		return AudioBuffer{}, err
	}

	var out AudioBuffer
	if len(buf.Data) > 0 {
		out, err = e.Push(buf)
		if err != nil {
			return AudioBuffer{}, err
		}
	}

	tail, err := e.Flush()
	if err != nil {
		return AudioBuffer{}, err
	}

	tail.Data = append(out.Data, tail.Data...)
	return tail, nil
}

// SpeedUpMono speeds up a single channel.
func SpeedUpMono(samples []float64, sampleRate int, speed float64) ([]float64, error) {
	out, err := SpeedUp(AudioBuffer{Data: samples, SampleRate: sampleRate, Channels: 1}, speed)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SpeedUpStereo speeds up a pair of planar channels.
func SpeedUpStereo(left, right []float64, sampleRate int, speed float64) (leftOut, rightOut []float64, err error) {
	if len(left) != len(right) {
		return nil, nil, fmt.Errorf("%w: left has %d samples, right has %d", ErrChannelMismatch, len(left), len(right))
	}

	data := make([]float64, len(left)*stereoChannels)
	for i := range left {
		data[i*stereoChannels] = left[i]
		data[i*stereoChannels+1] = right[i]
	}

	out, err := SpeedUp(AudioBuffer{Data: data, SampleRate: sampleRate, Channels: stereoChannels}, speed)
	if err != nil {
		return nil, nil, err
	}

	frames := out.Frames()
	leftOut = make([]float64, frames)
	rightOut = make([]float64, frames)
	for i := range frames {
		leftOut[i] = out.Data[i*stereoChannels]
		rightOut[i] = out.Data[i*stereoChannels+1]
	}
	return leftOut, rightOut, nil
}

// SpeedUpFloat32 is SpeedUpMono for float32 samples. It runs the engine in
// single precision throughout, trading some accuracy for speed.
func SpeedUpFloat32(samples []float32, sampleRate int, speed float64) ([]float32, error) {
	cfg := Config{Channels: 1, InputRate: sampleRate, Speed: speed, ChunkHint: len(samples)}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bank, err := filter.DesignBank(cfg.bankParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	s, err := engine.NewStream[float32](engine.Config{
		Channels:  1,
		Step:      cfg.Step(),
		Bank:      bank,
		ChunkHint: len(samples),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var output []float32
	if len(samples) > 0 {
		out, err := s.Process([][]float32{samples})
		if err != nil {
			return nil, err
		}
		output = append(output, out[0]...)
	}

	tail, err := s.Flush()
	if err != nil {
		return nil, err
	}
	return append(output, tail[0]...), nil
}
