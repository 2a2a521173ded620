package audioio

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
)

// pcmBufferReader is the go-audio decoder surface shared by WAV and AIFF.
type pcmBufferReader interface {
	Format() *audio.Format
	PCMBuffer(buf *audio.IntBuffer) (int, error)
}

// intDecoder adapts a go-audio integer PCM decoder to Decoder.
type intDecoder struct {
	file     io.Closer
	dec      pcmBufferReader
	name     string
	rate     int
	channels int
	bitDepth int
	frames   int64

	scale  float64
	offset int

	// signed8 reinterprets 8-bit values as two's complement bytes.
	signed8 bool
	buf    *audio.IntBuffer
	done   bool
}

func newIntDecoder(file io.Closer, dec pcmBufferReader, name string, bitDepth, offset int) (*intDecoder, error) {
	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		return nil, fmt.Errorf("%w: missing or empty format chunk", ErrInvalidFile)
	}

	scale, err := pcmScale(bitDepth)
	if err != nil {
		return nil, err
	}

	return &intDecoder{
		file:     file,
		dec:      dec,
		name:     name,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
		scale:    scale,
		offset:   offset,
		buf: &audio.IntBuffer{
			Format:         format,
			Data:           make([]int, defaultReadFrames*format.NumChannels),
			SourceBitDepth: bitDepth,
		},
	}, nil
}

func (d *intDecoder) SampleRate() int { return d.rate }
func (d *intDecoder) Channels() int   { return d.channels }
func (d *intDecoder) BitDepth() int   { return d.bitDepth }
func (d *intDecoder) Frames() int64   { return d.frames }
func (d *intDecoder) Format() string  { return d.name }

func (d *intDecoder) Read(dst []float64) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	n, err := frameSpan(dst, d.channels)
	if err != nil {
		return 0, err
	}

	if cap(d.buf.Data) < n {
		d.buf.Data = make([]int, n)
	}
	d.buf.Data = d.buf.Data[:n]

	got, err := d.dec.PCMBuffer(d.buf)
	got -= got % d.channels
	for i, v := range d.buf.Data[:got] {
		if d.signed8 {
			v = int(int8(v))
		}
		dst[i] = float64(v-d.offset) * d.scale
	}

	switch {
	case err != nil && !errors.Is(err, io.EOF):
		return got, err
	case got == 0 || got < n || err != nil:
		// go-audio signals the end with a short or empty read.
		d.done = true
		if got == 0 {
			return 0, io.EOF
		}
		return got, io.EOF
	}
	return got, nil
}

func (d *intDecoder) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
