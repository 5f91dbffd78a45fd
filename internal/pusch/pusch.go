// Package pusch implements this package: the PUSCH processor. It
// extracts data-carrying subcarriers, reverses transform precoding,
// equalizes, and soft-demodulates to LLRs, then hands the stream to
// internal/uci for UCI extraction and internal/sch for transport-block
// decoding.
package pusch

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
)

// standardizedDFTSizes are the transform-precoding sizes of the form
// 2^a*3^b*5^c that this package permits (12*N_PRB for N_PRB in the
// standardized contiguous allocation sizes).
var standardizedDFTSizes = buildStandardizedSizes()

func buildStandardizedSizes() map[int]bool {
	out := map[int]bool{}
	for a := 0; a <= 11; a++ {
		for b := 0; b <= 3; b++ {
			for c := 0; c <= 2; c++ {
				n := (1 << a) * intPow(3, b) * intPow(5, c)
				if n > 0 && n <= 1200 {
					out[n] = true
				}
			}
		}
	}
	return out
}

func intPow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}

// ExtractDataSubcarriers pulls the data-carrying resource elements from a
// grant's PRB set out of the resource grid, excluding the DMRS symbols,
// step 1.
func ExtractDataSubcarriers(gridRows [][]complex64, dmrsSymbols [2]int) [][]complex64 {
	out := make([][]complex64, 0, len(gridRows)-2)
	isDMRS := map[int]bool{dmrsSymbols[0]: true, dmrsSymbols[1]: true}
	for i, row := range gridRows {
		if isDMRS[i] {
			continue
		}
		out = append(out, row)
	}
	return out
}

// InverseTransformPrecode reverses SC-FDMA transform precoding: a size-
// (12*N_PRB) DFT per symbol converts frequency-domain symbols back into
// the modulation-symbol domain step 2. It rejects PRB
// counts whose 12*N_PRB size is not of the standardized 2^a*3^b*5^c form.
func InverseTransformPrecode(rows [][]complex64, nPRB int) ([][]complex64, error) {
	size := 12 * nPRB
	if !standardizedDFTSizes[size] {
		return nil, cellcfg.Newf(cellcfg.InvalidGrant, "pusch: prb count %d gives non-standardized DFT size %d", nPRB, size)
	}
	direct := directDFT(size)

	out := make([][]complex64, len(rows))
	for i, row := range rows {
		out[i] = direct(row)
	}
	return out, nil
}

// directDFT returns a size-n inverse DFT function (frequency domain ->
// modulation-symbol domain), matching numerics.FFT's direct-DFT fallback
// for non-power-of-two sizes but specialized to the sign convention SC-
// FDMA de-precoding requires.
func directDFT(n int) func([]complex64) []complex64 {
	return func(src []complex64) []complex64 {
		out := make([]complex64, n)
		scale := 1.0 / math.Sqrt(float64(n))
		for k := 0; k < n; k++ {
			var acc complex128
			for t := 0; t < n; t++ {
				theta := 2 * math.Pi * float64(k) * float64(t) / float64(n)
				acc += complex128(src[t]) * complex(math.Cos(theta), math.Sin(theta))
			}
			out[k] = complex64(acc * complex(scale, 0))
		}
		return out
	}
}

// Equalize runs single-stream MMSE equalization: y_eq = conj(H)*y /
// (|H|^2 + N0), falling back to zero-forcing when noise is zero or
// non-finite step 3.
func Equalize(rx, chEst []complex64, noise float64) []complex64 {
	out := make([]complex64, len(rx))
	useMMSE := noise > 0 && !math.IsNaN(noise) && !math.IsInf(noise, 0)
	for i := range rx {
		h := chEst[i]
		mag2 := real(h)*real(h) + imag(h)*imag(h)
		var denom float32
		if useMMSE {
			denom = mag2 + float32(noise)
		} else {
			denom = mag2
		}
		if denom == 0 {
			out[i] = 0
			continue
		}
		conjH := complex(real(h), -imag(h))
		out[i] = (conjH * rx[i]) / complex(denom, 0)
	}
	return out
}
