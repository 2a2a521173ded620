package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendAndWindow(t *testing.T) {
	h := NewHistory[float64](4, -2)
	h.AppendRepeat(0.5, 2)
	h.Append([]float64{1, 2, 3})

	assert.Equal(t, int64(-2), h.Start())
	assert.Equal(t, int64(3), h.End())
	assert.Equal(t, 5, h.Len())
	assert.Equal(t, []float64{0.5, 1, 2}, h.Window(-1, 3))
	assert.Equal(t, 3.0, h.Last())
	assert.Equal(t, 2.0, h.At(1))
}

func TestHistory_DiscardBefore(t *testing.T) {
	h := NewHistory[float64](8, 0)
	h.Append([]float64{0, 1, 2, 3, 4, 5})

	h.DiscardBefore(4)
	assert.Equal(t, int64(4), h.Start())
	assert.Equal(t, []float64{4, 5}, h.Window(4, 2))

	// Discarding behind the window is a no-op.
	h.DiscardBefore(2)
	assert.Equal(t, int64(4), h.Start())

	// Discarding past the end empties the window without moving End.
	h.DiscardBefore(100)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, int64(6), h.End())
}

func TestHistory_CompactsBeforeGrowing(t *testing.T) {
	h := NewHistory[float32](minHistoryCapacity, 0)
	first := make([]float32, minHistoryCapacity)
	for i := range first {
		first[i] = float32(i)
	}
	h.Append(first)
	h.DiscardBefore(int64(minHistoryCapacity - 4))

	h.Append([]float32{100, 101})
	assert.Equal(t, minHistoryCapacity, h.Cap(), "should compact in place")
	assert.Equal(t, []float32{60, 61, 62, 63, 100, 101}, h.Window(60, 6))
}

func TestHistory_Grows(t *testing.T) {
	h := NewHistory[float64](minHistoryCapacity, 10)
	big := make([]float64, 3*minHistoryCapacity+1)
	big[len(big)-1] = 7
	h.Append(big)

	require.Equal(t, len(big), h.Len())
	assert.GreaterOrEqual(t, h.Cap(), len(big))
	assert.Equal(t, 7.0, h.At(10+int64(len(big))-1))
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory[float64](0, 0)
	h.Append([]float64{1, 2, 3})
	h.Reset(-5)

	assert.Equal(t, 0, h.Len())
	assert.Equal(t, int64(-5), h.Start())
	assert.Zero(t, h.Last())
}

func BenchmarkHistory_SlidingAppend(b *testing.B) {
	h := NewHistory[float64](8192, 0)
	chunk := make([]float64, 1024)

	b.ReportAllocs()
	for b.Loop() {
		h.Append(chunk)
		h.DiscardBefore(h.End() - 64)
	}
}
