package audioio

import (
	"fmt"
	"os"

	"github.com/go-audio/aiff"
)

func openAIFF(f *os.File) (Decoder, error) {
	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}
	dec.ReadInfo()

	bitDepth := int(dec.BitDepth)
	d, err := newIntDecoder(f, dec, formatAIFF, bitDepth, 0)
	if err != nil {
		return nil, err
	}
	// AIFF samples are signed at every depth, but go-audio hands 8-bit
	// samples back as unsigned bytes.
	d.signed8 = bitDepth == bitDepth8
	d.frames = int64(dec.NumSampleFrames)
	return d, nil
}
