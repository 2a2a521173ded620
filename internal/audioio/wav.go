package audioio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

func openWAV(f *os.File) (Decoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}
	dec.ReadInfo()

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV format tag %#x is not integer PCM", ErrInvalidFile, dec.WavAudioFormat)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	bitDepth := int(dec.BitDepth)
	offset := 0
	if bitDepth == bitDepth8 {
		offset = wavUnsigned8Offset
	}

	d, err := newIntDecoder(f, dec, formatWAV, bitDepth, offset)
	if err != nil {
		return nil, err
	}
	// The decoder now sits at the start of the data chunk, which PCMBuffer
	// continues from.
	if frameBytes := int64(d.channels * ((bitDepth + 7) / 8)); frameBytes > 0 {
		d.frames = dec.PCMLen() / frameBytes
	}
	return d, nil
}
