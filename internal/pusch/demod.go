package pusch

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
)

// llrScale maps a hard decision at nominal SNR to +-100, matching the
// usual int16 fixed-point LLR convention.
const llrScale = 100.0

// qpskConstellation, qam16Constellation and qam64Constellation are
// square constellations normalized to unit average energy. QPSK follows
// the standardized mapping (bit 0 -> positive component); for 16/64-QAM
// each dimension's amplitude index is labelled in natural binary, not
// Gray code.
var qpskConstellation = buildConstellation(2)
var qam16Constellation = buildConstellation(4)
var qam64Constellation = buildConstellation(6)

func buildConstellation(qm int) []complex128 {
	side := 1 << uint(qm/2)
	levels := make([]float64, side)
	for i := range levels {
		levels[i] = float64((side - 1) - 2*i)
	}
	var energy float64
	for _, l := range levels {
		energy += l * l
	}
	energy = energy / float64(side) * 2 // both I and Q dimensions
	norm := math.Sqrt(energy)

	out := make([]complex128, 0, side*side)
	for _, re := range levels {
		for _, im := range levels {
			out = append(out, complex(re/norm, im/norm))
		}
	}
	return out
}

func constellationFor(mod cellcfg.Modulation) []complex128 {
	switch mod {
	case cellcfg.ModQPSK:
		return qpskConstellation
	case cellcfg.Mod16QAM:
		return qam16Constellation
	default:
		return qam64Constellation
	}
}

// bitLabel returns the Q_m-bit binary label of constellation index i,
// matching the index <-> bit-pattern convention buildConstellation used
// to lay out the table (MSB first).
func bitLabel(i, qm int) []byte {
	out := make([]byte, qm)
	for b := 0; b < qm; b++ {
		out[qm-1-b] = byte((i >> uint(b)) & 1)
	}
	return out
}

// SoftDemodulate converts one equalized modulation symbol per element of
// syms into Q_m max-log LLRs per symbol, scaled so |LLR|==llrScale
// corresponds to a hard decision at the given nominal noise variance, per
// this package step 4.
func SoftDemodulate(syms []complex64, mod cellcfg.Modulation, noiseVar float64) []float64 {
	qm := mod.BitsPerSymbol()
	constellation := constellationFor(mod)
	if noiseVar <= 0 || math.IsNaN(noiseVar) {
		noiseVar = 1e-6
	}
	out := make([]float64, 0, len(syms)*qm)
	for _, s := range syms {
		for b := 0; b < qm; b++ {
			var best0, best1 float64 = math.Inf(1), math.Inf(1)
			for i, c := range constellation {
				label := bitLabel(i, qm)
				d := complex128(s) - c
				dist := real(d)*real(d) + imag(d)*imag(d)
				if label[b] == 0 {
					if dist < best0 {
						best0 = dist
					}
				} else {
					if dist < best1 {
						best1 = dist
					}
				}
			}
			llr := (best1 - best0) / (2 * noiseVar)
			out = append(out, clampLLR(llr))
		}
	}
	return out
}

func clampLLR(llr float64) float64 {
	if llr > llrScale {
		return llrScale
	}
	if llr < -llrScale {
		return -llrScale
	}
	return llr
}
