// Package audioio decodes audio files into float samples for the engine and
// writes rendered audio back out as PCM WAV.
package audioio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tphakala/go-nightcore"
)

// Errors returned by decoders and writers.
var (
	// ErrUnsupportedFormat indicates a file extension no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFile indicates a file that is not valid for its format.
	ErrInvalidFile = errors.New("invalid audio file")

	// ErrUnsupportedBitDepth indicates a PCM bit depth that cannot be read
	// or written.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)

// Decoder is an open audio file.
//
// Read fills dst with interleaved samples in [-1, 1], always a whole number
// of frames, and returns io.EOF at the end of the stream. dst must hold at
// least one frame.
type Decoder interface {
	nightcore.Source
	io.Closer

	// BitDepth returns the bit depth of the encoded samples. Lossy formats
	// report the depth of their decoded PCM.
	BitDepth() int

	// Frames returns the total number of frames, or 0 if unknown.
	Frames() int64

	// Format returns the format name.
	Format() string
}

// Format describes a supported input format.
type Format struct {
	Name        string
	Extensions  []string
	Description string

	open func(f *os.File) (Decoder, error)
}

var formats = []Format{
	{Name: formatWAV, Extensions: []string{".wav", ".wave"}, Description: "PCM WAV (8/16/24/32-bit)", open: openWAV},
	{Name: formatAIFF, Extensions: []string{".aiff", ".aif"}, Description: "PCM AIFF (8/16/24/32-bit)", open: openAIFF},
	{Name: formatFLAC, Extensions: []string{".flac"}, Description: "FLAC", open: openFLAC},
	{Name: formatMP3, Extensions: []string{".mp3"}, Description: "MPEG-1 Layer III (decoded to 16-bit stereo)", open: openMP3},
	{Name: formatOGG, Extensions: []string{".ogg", ".oga"}, Description: "Ogg Vorbis", open: openOGG},
}

// Formats returns the supported input formats.
func Formats() []Format {
	return slices.Clone(formats)
}

// Lookup returns the format that handles path's extension.
func Lookup(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formats {
		if slices.Contains(f.Extensions, ext) {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// IsSupported reports whether path has a readable extension.
func IsSupported(path string) bool {
	_, err := Lookup(path)
	return err == nil
}

// Open opens path with the decoder its extension selects. The caller must
// Close the decoder.
func Open(path string) (Decoder, error) {
	format, err := Lookup(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	dec, err := format.open(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return dec, nil
}

// frameSpan returns the largest whole-frame prefix length of dst.
func frameSpan(dst []float64, channels int) (int, error) {
	n := len(dst) - len(dst)%channels
	if n == 0 {
		return 0, io.ErrShortBuffer
	}
	return n, nil
}
