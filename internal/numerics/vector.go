// Package numerics holds the pure vector kernels of this package:
// complex/real vector arithmetic, CRC, Gold-sequence generation, the FFT
// facade and the turbo rate-matching lookup tables. The element-wise
// helpers in vector.go write into caller-supplied slices; other functions
// here, such as GenerateSequence and CRCKind.AppendBits, return newly
// allocated slices. Every function here is deterministic; none retains
// state across calls except the process-wide, lazily initialized tables
// in ratematch.go.
package numerics

import "math/cmplx"

// Prod computes element-wise product dst[i] = a[i]*b[i]. dst may alias a
// or b (same-length in-place is documented as safe); it must not be a
// shorter or longer slice than a and b.
func Prod(dst, a, b []complex64) {
	n := len(a)
	for i := 0; i < n; i++ {
		dst[i] = a[i] * b[i]
	}
}

// ConjProd computes dst[i] = a[i] * conj(b[i]), the building block of
// every LS channel estimate in internal/chest. In-place safe.
func ConjProd(dst, a, b []complex64) {
	n := len(a)
	for i := 0; i < n; i++ {
		dst[i] = a[i] * complex64(cmplx.Conj(complex128(b[i])))
	}
}

// DotProd returns sum(a[i] * conj(b[i])).
func DotProd(a, b []complex64) complex128 {
	var acc complex128
	for i := range a {
		acc += complex128(a[i]) * cmplx.Conj(complex128(b[i]))
	}
	return acc
}

// AvgPower returns the mean squared magnitude of x.
func AvgPower(x []complex64) float64 {
	if len(x) == 0 {
		return 0
	}
	var acc float64
	for _, v := range x {
		acc += real(v)*real(v) + imag(v)*imag(v)
	}
	return acc / float64(len(x))
}

// Mean returns the arithmetic mean of x.
func Mean(x []complex64) complex128 {
	if len(x) == 0 {
		return 0
	}
	var acc complex128
	for _, v := range x {
		acc += complex128(v)
	}
	return acc / complex(float64(len(x)), 0)
}

// AddScaled computes dst[i] = a[i] + scale*b[i]. In-place safe (dst==a).
func AddScaled(dst, a, b []complex64, scale complex64) {
	for i := range a {
		dst[i] = a[i] + scale*b[i]
	}
}

// ApplyPhase multiplies every element of x by exp(i*theta), used for CFO
// correction and OFDM window-offset compensation. In-place safe.
func ApplyPhase(dst, x []complex64, theta float64) {
	rot := complex64(cmplx.Exp(complex(0, theta)))
	for i := range x {
		dst[i] = x[i] * rot
	}
}

// Permute writes dst[i] = src[lut[i]] for an arbitrary index permutation,
// the shape shared by every interleaver in this module (turbo internal
// interleaver, rate-matching circular buffer, UCI channel interleaver).
// dst and src must be disjoint: a permutation is not safe in place unless
// the caller already knows it is a fixed point at every index, which none
// of this module's permutations are.
func Permute(dst []byte, src []byte, lut []int) {
	for i, j := range lut {
		dst[i] = src[j]
	}
}

// PermuteComplex is Permute's complex64 counterpart.
func PermuteComplex(dst []complex64, src []complex64, lut []int) {
	for i, j := range lut {
		dst[i] = src[j]
	}
}
