package numerics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFFTThenIFFTRoundTripPow2(t *testing.T) {
	const n = 64
	fwd := NewFFT(n, false, true)
	inv := NewFFT(n, true, true)

	src := make([]complex64, n)
	for i := range src {
		src[i] = complex(float32(i%5)-2, float32(i%3))
	}
	freq := make([]complex64, n)
	fwd.Transform(freq, src)
	back := make([]complex64, n)
	inv.Transform(back, freq)

	for i := range src {
		assert.InDelta(t, real(src[i]), real(back[i]), 1e-4)
		assert.InDelta(t, imag(src[i]), imag(back[i]), 1e-4)
	}
}

func TestFFTDirectMatchesRadix2(t *testing.T) {
	const n = 16
	direct := &FFT{size: n, inverse: false, normalize: false}
	radix2 := NewFFT(n, false, false)

	src := make([]complex64, n)
	for i := range src {
		src[i] = complex(float32(i), 0)
	}
	dDst := make([]complex64, n)
	rDst := make([]complex64, n)
	direct.transformDirect(dDst, src)
	radix2.Transform(rDst, src)

	for i := range src {
		assert.InDelta(t, real(dDst[i]), real(rDst[i]), 1e-3)
		assert.InDelta(t, imag(dDst[i]), imag(rDst[i]), 1e-3)
	}
}

func TestZadoffChuUnitMagnitude(t *testing.T) {
	seq := ZadoffChu(25, 139)
	for _, v := range seq {
		mag := math.Hypot(float64(real(v)), float64(imag(v)))
		assert.InDelta(t, 1.0, mag, 1e-6)
	}
}

func TestFFTShiftCentresDC(t *testing.T) {
	src := []complex64{1, 2, 3, 4}
	dst := make([]complex64, 4)
	FFTShift(dst, src)
	assert.Equal(t, []complex64{3, 4, 1, 2}, dst)
}
