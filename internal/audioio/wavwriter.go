package audioio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/tphakala/go-nightcore"
)

// WAVWriter writes interleaved float audio to a PCM WAV file.
//
// Audio goes to a hidden temporary file next to the destination, which is
// renamed into place by Close. Abort discards it, so a failed render never
// leaves a truncated file at the destination.
type WAVWriter struct {
	path     string
	tmpPath  string
	file     *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	rate     int
	channels int
	bitDepth int
	scale    float64
	frames   int64
	closed   bool
}

// CreateWAV creates a writer for path. bitDepth must be 16, 24 or 32.
func CreateWAV(path string, sampleRate, channels, bitDepth int) (*WAVWriter, error) {
	switch bitDepth {
	case bitDepth16, bitDepth24, bitDepth32:
	default:
		return nil, fmt.Errorf("%w: cannot write %d-bit WAV", ErrUnsupportedBitDepth, bitDepth)
	}
	if sampleRate < 1 || channels < 1 {
		return nil, fmt.Errorf("invalid WAV layout: %d Hz, %d channels", sampleRate, channels)
	}

	dir, name := filepath.Split(path)
	tmpPath := filepath.Join(dir, "."+name+"."+uuid.NewString()+".tmp")

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	format := &audio.Format{NumChannels: channels, SampleRate: sampleRate}
	return &WAVWriter{
		path:     path,
		tmpPath:  tmpPath,
		file:     f,
		enc:      wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM),
		buf:      &audio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
		rate:     sampleRate,
		channels: channels,
		bitDepth: bitDepth,
		scale:    pcmFullScale(bitDepth),
	}, nil
}

// Write quantizes buf and appends it. Samples are clamped to [-1, 1].
func (w *WAVWriter) Write(buf nightcore.AudioBuffer) error {
	if w.closed {
		return errors.New("write to closed WAV writer")
	}
	if buf.Channels != w.channels {
		return fmt.Errorf("%w: buffer has %d channels, file has %d", nightcore.ErrChannelMismatch, buf.Channels, w.channels)
	}
	if buf.SampleRate != w.rate {
		return fmt.Errorf("buffer rate %d Hz does not match file rate %d Hz", buf.SampleRate, w.rate)
	}

	frames := buf.Frames()
	if frames == 0 {
		return nil
	}
	n := frames * w.channels
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	for i, v := range buf.Data[:n] {
		w.buf.Data[i] = quantize(v, w.scale)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	w.frames += int64(frames)
	return nil
}

// Close finalizes the WAV header and moves the file to its destination.
func (w *WAVWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		_ = w.file.Close()
		_ = os.Remove(w.tmpPath)
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tmpPath)
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		_ = os.Remove(w.tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Abort discards everything written. It is a no-op after Close.
func (w *WAVWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_ = w.file.Close()
	if err := os.Remove(w.tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove temporary file: %w", err)
	}
	return nil
}

// Path returns the destination path.
func (w *WAVWriter) Path() string { return w.path }

// Frames returns the number of frames written.
func (w *WAVWriter) Frames() int64 { return w.frames }

// BitDepth returns the output bit depth.
func (w *WAVWriter) BitDepth() int { return w.bitDepth }

// OutputBitDepth picks the bit depth for writing audio decoded at
// sourceDepth: the source depth if WAV output supports it, otherwise 16,
// or 24 for high-resolution sources.
func OutputBitDepth(sourceDepth int) int {
	switch {
	case sourceDepth == bitDepth16, sourceDepth == bitDepth24, sourceDepth == bitDepth32:
		return sourceDepth
	case sourceDepth > bitDepth16:
		return bitDepth24
	default:
		return bitDepth16
	}
}
