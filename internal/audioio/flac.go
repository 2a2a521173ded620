package audioio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// flacFrameReader is the part of flac.Stream the decoder uses.
type flacFrameReader interface {
	ParseNext() (*frame.Frame, error)
}

type flacDecoder struct {
	file     io.Closer
	stream   flacFrameReader
	rate     int
	channels int
	bitDepth int
	frames   int64
	scale    float64

	// cur is the frame being drained; pos is the next sample in it.
	cur  *frame.Frame
	pos  int
	done bool
}

func openFLAC(f *os.File) (Decoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	info := stream.Info
	return newFLACDecoder(f, stream, int(info.SampleRate), int(info.NChannels), int(info.BitsPerSample), int64(info.NSamples))
}

func newFLACDecoder(file io.Closer, stream flacFrameReader, rate, channels, bitDepth int, frames int64) (*flacDecoder, error) {
	if rate < 1 || channels < 1 {
		return nil, fmt.Errorf("%w: FLAC stream info reports %d Hz, %d channels", ErrInvalidFile, rate, channels)
	}
	if bitDepth < 4 || bitDepth > bitDepth32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &flacDecoder{
		file:     file,
		stream:   stream,
		rate:     rate,
		channels: channels,
		bitDepth: bitDepth,
		frames:   frames,
		scale:    1 / float64(uint64(1)<<(bitDepth-1)),
	}, nil
}

func (d *flacDecoder) SampleRate() int { return d.rate }
func (d *flacDecoder) Channels() int   { return d.channels }
func (d *flacDecoder) BitDepth() int   { return d.bitDepth }
func (d *flacDecoder) Frames() int64   { return d.frames }
func (d *flacDecoder) Format() string  { return formatFLAC }

func (d *flacDecoder) Read(dst []float64) (int, error) {
	n, err := frameSpan(dst, d.channels)
	if err != nil {
		return 0, err
	}

	written := 0
	for written < n {
		if d.cur == nil || d.pos >= int(d.cur.BlockSize) {
			if d.done {
				break
			}
			if err := d.next(); err != nil {
				return written, err
			}
			continue
		}

		for ch := range d.channels {
			dst[written+ch] = float64(d.cur.Subframes[ch].Samples[d.pos]) * d.scale
		}
		d.pos++
		written += d.channels
	}

	if written == 0 && d.done {
		return 0, io.EOF
	}
	return written, nil
}

func (d *flacDecoder) next() error {
	fr, err := d.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		d.done = true
		d.cur = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode FLAC frame: %w", err)
	}

	if len(fr.Subframes) < d.channels {
		return fmt.Errorf("%w: FLAC frame has %d subframes, stream has %d channels",
			ErrInvalidFile, len(fr.Subframes), d.channels)
	}
	for ch := range d.channels {
		if len(fr.Subframes[ch].Samples) < int(fr.BlockSize) {
			return fmt.Errorf("%w: FLAC subframe %d is short", ErrInvalidFile, ch)
		}
	}

	d.cur = fr
	d.pos = 0
	return nil
}

func (d *flacDecoder) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
