package audioio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Reader is the part of go-mp3's Decoder the decoder uses.
type mp3Reader interface {
	io.Reader
	SampleRate() int
	Length() int64
}

// mp3Decoder reads go-mp3 output, which is always 16-bit stereo.
type mp3Decoder struct {
	file io.Closer
	dec  mp3Reader
	buf  []byte
	done bool
}

func openMP3(f *os.File) (Decoder, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return newMP3Decoder(f, dec), nil
}

func newMP3Decoder(file io.Closer, dec mp3Reader) *mp3Decoder {
	return &mp3Decoder{
		file: file,
		dec:  dec,
		buf:  make([]byte, defaultReadFrames*mp3BytesPerFrame),
	}
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) Channels() int   { return mp3Channels }
func (d *mp3Decoder) BitDepth() int   { return mp3BitDepth }
func (d *mp3Decoder) Format() string  { return formatMP3 }

func (d *mp3Decoder) Frames() int64 {
	if n := d.dec.Length(); n > 0 {
		return n / mp3BytesPerFrame
	}
	return 0
}

func (d *mp3Decoder) Read(dst []float64) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	n, err := frameSpan(dst, mp3Channels)
	if err != nil {
		return 0, err
	}

	size := n / mp3Channels * mp3BytesPerFrame
	if cap(d.buf) < size {
		d.buf = make([]byte, size)
	}
	d.buf = d.buf[:size]

	// ReadFull keeps frames whole across go-mp3's internal frame boundaries.
	got, err := io.ReadFull(d.dec, d.buf)
	got -= got % mp3BytesPerFrame

	samples := got / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(d.buf[2*i:]))
		dst[i] = float64(v) / 32768
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		d.done = true
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, io.EOF
	case err != nil:
		return samples, fmt.Errorf("decode MP3: %w", err)
	}
	return samples, nil
}

func (d *mp3Decoder) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
