package audioio

// Format names
const (
	formatWAV  = "wav"
	formatAIFF = "aiff"
	formatFLAC = "flac"
	formatMP3  = "mp3"
	formatOGG  = "ogg"
)

// PCM bit depths
const (
	bitDepth8  = 8
	bitDepth16 = 16
	bitDepth24 = 24
	bitDepth32 = 32
)

// Decoder constants
const (
	// wavUnsigned8Offset is the zero level of unsigned 8-bit WAV samples.
	wavUnsigned8Offset = 128

	// wavFormatPCM is the WAVE_FORMAT_PCM format tag.
	wavFormatPCM = 1

	// wavFormatExtensible is WAVE_FORMAT_EXTENSIBLE, which go-audio reads
	// as integer PCM.
	wavFormatExtensible = 0xFFFE

	// mp3Channels and mp3BytesPerFrame describe go-mp3 output: 16-bit
	// little-endian stereo.
	mp3Channels      = 2
	mp3BytesPerFrame = 4
	mp3BitDepth      = 16

	// oggBitDepth is reported for Ogg Vorbis, which decodes to float.
	oggBitDepth = 32

	// defaultReadFrames sizes internal decode buffers.
	defaultReadFrames = 4096
)
