package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/go-nightcore/internal/testutil"
)

// TestBesselI0 tests BesselI0 against known values.
func TestBesselI0(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		expected  float64
		tolerance float64
	}{
		{"Zero", 0.0, 1.0, 1e-15},
		{"Small positive", 0.5, 1.063483370741324, 1e-9},
		{"One", 1.0, 1.266065877752008, 1e-9},
		{"Two", 2.0, 2.279585302336067, 1e-9},
		{"Five", 5.0, 27.23987182360445, 1e-9},
		{"Ten", 10.0, 2815.716628466254, 1e-9},
		{"Twenty", 20.0, 4.355828255955353e7, 1e-9},
		{"Negative one", -1.0, 1.266065877752008, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertRelativeError(t, tt.expected, BesselI0(tt.x), tt.tolerance)
		})
	}
}

// TestBesselI0_Monotonic tests I₀(x) is increasing for x > 0.
func TestBesselI0_Monotonic(t *testing.T) {
	prev := BesselI0(0)
	for x := 0.25; x <= 25; x += 0.25 {
		cur := BesselI0(x)
		assert.Greater(t, cur, prev, "BesselI0 not increasing at x=%v", x)
		prev = cur
	}
}

func TestKaiserBeta(t *testing.T) {
	tests := []struct {
		name        string
		attenuation float64
		expected    float64
	}{
		{"Below threshold", 15, 0},
		{"Medium band", 40, 0.5842*math.Pow(19, 0.4) + 0.07886*19},
		{"60 dB", 60, 0.1102 * (60 - 8.7)},
		{"100 dB", 100, 0.1102 * (100 - 8.7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, KaiserBeta(tt.attenuation), 1e-12)
		})
	}
}

func TestKaiserBeta_Monotonic(t *testing.T) {
	prev := KaiserBeta(21)
	for att := 22.0; att <= 150; att++ {
		cur := KaiserBeta(att)
		assert.GreaterOrEqual(t, cur, prev, "KaiserBeta decreased at %v dB", att)
		prev = cur
	}
}

func TestKaiserWindow(t *testing.T) {
	beta := KaiserBeta(80)
	i0 := BesselI0(beta)

	assert.InDelta(t, 1.0, KaiserWindow(0, beta, i0), 1e-15, "window peak should be 1")
	assert.Zero(t, KaiserWindow(1, beta, i0), "window must vanish at its edge")
	assert.Zero(t, KaiserWindow(-1.5, beta, i0), "window must vanish outside support")

	for u := 0.05; u < 1; u += 0.05 {
		assert.InDelta(t, KaiserWindow(u, beta, i0), KaiserWindow(-u, beta, i0), 1e-15)
		assert.Less(t, KaiserWindow(u, beta, i0), KaiserWindow(u-0.05, beta, i0)+1e-15)
	}
}

func TestSinc(t *testing.T) {
	assert.InDelta(t, 1.0, Sinc(0), 1e-15)
	for k := 1; k <= 8; k++ {
		assert.InDelta(t, 0.0, Sinc(float64(k)), 1e-15, "sinc should vanish at integer %d", k)
	}
	assert.InDelta(t, 2/math.Pi, Sinc(0.5), 1e-15)
	assert.InDelta(t, Sinc(0.3), Sinc(-0.3), 1e-15)
}

func BenchmarkBesselI0(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = BesselI0(8.6)
	}
}
