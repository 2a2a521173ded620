// Package pipeline holds the streaming buffers that carry per-channel
// filter state across chunk boundaries.
package pipeline

import (
	"github.com/tphakala/go-nightcore/internal/simdops"
)

// History is a sliding window over one channel's input samples, addressed
// by absolute sample index.
//
// Samples are appended at the end and discarded from the front once the
// interpolator no longer needs them. Discarded space is reclaimed lazily by
// compacting the live region to the start of the backing array, so the
// steady state performs no allocation and a Window is always a contiguous
// slice suitable for a SIMD dot product.
//
// History is not safe for concurrent use.
type History[F simdops.Float] struct {
	data  []F
	head  int   // index in data of the first live sample
	start int64 // absolute index of data[head]
}

// NewHistory creates a history with room for capacity samples before it
// first needs to grow. start is the absolute index of the first sample that
// will be appended.
func NewHistory[F simdops.Float](capacity int, start int64) *History[F] {
	if capacity < minHistoryCapacity {
		capacity = minHistoryCapacity
	}
	return &History[F]{
		data:  make([]F, 0, capacity),
		start: start,
	}
}

// Append adds samples to the end of the window.
func (h *History[F]) Append(samples []F) {
	h.reserve(len(samples))
	h.data = append(h.data, samples...)
}

// AppendRepeat appends n copies of v.
func (h *History[F]) AppendRepeat(v F, n int) {
	if n <= 0 {
		return
	}
	h.reserve(n)
	for range n {
		h.data = append(h.data, v)
	}
}

// Window returns n samples starting at absolute index from. The caller must
// ensure Start() <= from and from+n <= End(). The slice aliases the buffer
// and is valid until the next Append or Discard.
func (h *History[F]) Window(from int64, n int) []F {
	i := h.head + int(from-h.start)
	return h.data[i : i+n : i+n]
}

// At returns the sample at absolute index idx.
func (h *History[F]) At(idx int64) F {
	return h.data[h.head+int(idx-h.start)]
}

// Last returns the most recently appended sample, or zero when empty.
func (h *History[F]) Last() F {
	if h.Len() == 0 {
		return 0
	}
	return h.data[len(h.data)-1]
}

// DiscardBefore drops every sample with an absolute index below idx.
func (h *History[F]) DiscardBefore(idx int64) {
	n := int(idx - h.start)
	if n <= 0 {
		return
	}
	if n > h.Len() {
		n = h.Len()
	}
	h.head += n
	h.start += int64(n)
}

// Start returns the absolute index of the oldest retained sample.
func (h *History[F]) Start() int64 { return h.start }

// End returns one past the absolute index of the newest sample.
func (h *History[F]) End() int64 { return h.start + int64(h.Len()) }

// Len returns the number of retained samples.
func (h *History[F]) Len() int { return len(h.data) - h.head }

// Cap returns the capacity of the backing array.
func (h *History[F]) Cap() int { return cap(h.data) }

// Reset empties the window and rebases it at absolute index start.
func (h *History[F]) Reset(start int64) {
	h.data = h.data[:0]
	h.head = 0
	h.start = start
}

// reserve makes room for n more samples, compacting before growing.
func (h *History[F]) reserve(n int) {
	if len(h.data)+n <= cap(h.data) {
		return
	}

	live := h.Len()
	if h.head > 0 && live+n <= cap(h.data) {
		copy(h.data[:live], h.data[h.head:])
		h.data = h.data[:live]
		h.head = 0
		return
	}

	newCap := cap(h.data) * bufferGrowthFactor
	for newCap < live+n {
		newCap *= bufferGrowthFactor
	}
	grown := make([]F, live, newCap)
	copy(grown, h.data[h.head:])
	h.data = grown
	h.head = 0
}
