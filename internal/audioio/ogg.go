package audioio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
	"github.com/tphakala/go-nightcore/internal/simdops"
)

// oggReader is the part of oggvorbis.Reader the decoder uses.
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read(p []float32) (int, error)
}

type oggDecoder struct {
	file     io.Closer
	dec      oggReader
	channels int
	buf      []float32
	done     bool
}

func openOGG(f *os.File) (Decoder, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return newOGGDecoder(f, dec)
}

func newOGGDecoder(file io.Closer, dec oggReader) (*oggDecoder, error) {
	channels := dec.Channels()
	if channels < 1 || dec.SampleRate() < 1 {
		return nil, fmt.Errorf("%w: Vorbis header reports %d Hz, %d channels", ErrInvalidFile, dec.SampleRate(), channels)
	}
	return &oggDecoder{
		file:     file,
		dec:      dec,
		channels: channels,
		buf:      make([]float32, defaultReadFrames*channels),
	}, nil
}

func (d *oggDecoder) SampleRate() int { return d.dec.SampleRate() }
func (d *oggDecoder) Channels() int   { return d.channels }
func (d *oggDecoder) BitDepth() int   { return oggBitDepth }
func (d *oggDecoder) Frames() int64   { return max(d.dec.Length(), 0) }
func (d *oggDecoder) Format() string  { return formatOGG }

func (d *oggDecoder) Read(dst []float64) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	n, err := frameSpan(dst, d.channels)
	if err != nil {
		return 0, err
	}

	if cap(d.buf) < n {
		d.buf = make([]float32, n)
	}
	d.buf = d.buf[:n]

	// Read returns interleaved values, a whole number of frames.
	got, err := d.dec.Read(d.buf)
	got -= got % d.channels
	simdops.Convert(dst[:got], d.buf[:got])

	switch {
	case errors.Is(err, io.EOF):
		d.done = true
		if got == 0 {
			return 0, io.EOF
		}
		return got, io.EOF
	case err != nil:
		return got, fmt.Errorf("decode Vorbis: %w", err)
	}
	return got, nil
}

func (d *oggDecoder) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
