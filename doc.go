// Package nightcore speeds audio up the nightcore way: played back faster by
// a speed factor, raising tempo and pitch together.
//
// The engine is a streaming polyphase resampler. For N input frames and a
// speed s it emits about N/s frames at the original sample rate, so the
// result plays s times faster. Output is deterministic and independent of how
// the input is split into chunks.
//
// # Quick Start
//
// One-shot:
//
//	out, err := nightcore.SpeedUp(buf, nightcore.DefaultSpeed)
//
// Streaming:
//
//	e, err := nightcore.New(nightcore.Config{
//	    Channels:  2,
//	    InputRate: 44100,
//	    Speed:     1.35,
//	    Kernel:    nightcore.KernelSinc,
//	    Quality:   nightcore.QualityHigh,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range chunks {
//	    out, err := e.Push(chunk)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    write(out)
//	}
//
//	tail, err := e.Flush()
//
// Whole streams can be driven with [Render], which pulls from a [Source] and
// writes to a [Sink].
//
// # Kernels
//
//   - [KernelLinear]: 2 taps. Fast, audible aliasing on bright material.
//   - [KernelCubic]: 4-tap Catmull-Rom. A good preview setting.
//   - [KernelSinc]: Kaiser-windowed sinc whose cutoff follows the speed, so
//     content pushed above the Nyquist frequency is filtered instead of
//     folding back. [Quality] selects its length and stopband.
//
// # Edges
//
// The start of the stream is padded by repeating the first frame and the end
// by repeating the last frame, so the first and last outputs are not faded.
//
// # Thread Safety
//
// An [Engine] is not safe for concurrent use. Use one engine per stream; the
// engines themselves share nothing.
package nightcore
