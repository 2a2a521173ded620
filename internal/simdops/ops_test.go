package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_Float64(t *testing.T) {
	ops := For[float64]()
	require.NotNil(t, ops)

	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	b := []float64{9, 8, 7, 6, 5, 4, 3, 2, 1}
	assert.InDelta(t, 165.0, ops.DotProductUnsafe(a, b), 1e-12)
	assert.InDelta(t, 45.0, ops.Sum(a), 1e-12)

	dst := make([]float64, len(a))
	ops.Scale(dst, a, 0.5)
	assert.InDelta(t, 4.5, dst[8], 1e-12)
}

func TestFor_Float32(t *testing.T) {
	ops := For[float32]()
	require.NotNil(t, ops)

	a := []float32{0.5, -0.25, 1, 2}
	b := []float32{2, 4, 1, 0.5}
	assert.InDelta(t, 2.0, float64(ops.DotProductUnsafe(a, b)), 1e-6)
	assert.InDelta(t, 3.25, float64(ops.Sum(a)), 1e-6)
}

func TestConvert(t *testing.T) {
	src := []float64{0.25, -0.5, 1}
	dst := make([]float32, len(src))
	Convert(dst, src)
	assert.Equal(t, []float32{0.25, -0.5, 1}, dst)
}
