package pucch

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// payloadBitsFormat1 returns the number of information bits a format
// carries: 0 for presence-only Format 1, 1 for 1a, 2 for 1b.
func payloadBitsFormat1(format cellcfg.PUCCHFormat) int {
	switch format {
	case cellcfg.PUCCHFormat1a:
		return 1
	case cellcfg.PUCCHFormat1b:
		return 2
	default:
		return 0
	}
}

func modulateFormat1(format cellcfg.PUCCHFormat, bits []byte) complex64 {
	switch format {
	case cellcfg.PUCCHFormat1:
		return 1
	case cellcfg.PUCCHFormat1a:
		if bits[0] == 0 {
			return 1
		}
		return -1
	default: // 1b, QPSK Gray
		idx := int(bits[0])<<1 | int(bits[1])
		table := []complex64{
			complex(1/math.Sqrt2, 1/math.Sqrt2),
			complex(-1/math.Sqrt2, 1/math.Sqrt2),
			complex(1/math.Sqrt2, -1/math.Sqrt2),
			complex(-1/math.Sqrt2, -1/math.Sqrt2),
		}
		return table[idx]
	}
}

// EncodeFormat1 packs UCI into a symbol vector for Format 1/1a/1b: the
// cyclic-shifted base sequence multiplied by the payload symbol and the
// orthogonal cover code, placed across the 4 (normal CP) reference-free
// symbols of one slot.
func EncodeFormat1(cfg *Config, value Value) [][]complex64 {
	_, _ = resourceShiftAndPRB(cfg, cfg.NPUCCH) // resource resolved, used by caller for placement
	base := baseSequence(cfg.Cell, cfg.CyclicShift)
	payload := modulateFormat1(cfg.Format, value.ACKBits)
	cover := coverCode(cfg.CoverIndex)

	out := make([][]complex64, len(cover))
	for s, c := range cover {
		row := make([]complex64, 12)
		for k := range row {
			row[k] = base[k] * payload * c
		}
		out[s] = row
	}
	return out
}

// DecodeFormat1 enumerates all 2^b hypotheses for the b in {0,1,2}
// payload bits, reconstructs the expected symbol vector, and picks the
// hypothesis maximizing real-valued correlation with the received
// vector
func DecodeFormat1(cfg *Config, received [][]complex64, chEst []complex64) DecodeResult {
	nBits := payloadBitsFormat1(cfg.Format)
	base := baseSequence(cfg.Cell, cfg.CyclicShift)
	cover := coverCode(cfg.CoverIndex)

	nHyp := 1
	if nBits > 0 {
		nHyp = 1 << uint(nBits)
	}

	bestCorr := math.Inf(-1)
	var bestBits []byte
	for h := 0; h < nHyp; h++ {
		bits := bitsOf(h, nBits)
		payload := complex64(1)
		if nBits > 0 {
			payload = modulateFormat1(cfg.Format, bits)
		}
		var corr float64
		for s, c := range cover {
			if s >= len(received) {
				break
			}
			expected := make([]complex64, 12)
			for k := range expected {
				expected[k] = base[k] * payload * c * chEst[k]
			}
			corr += real(numerics.DotProd(received[s], expected))
		}
		if corr > bestCorr {
			bestCorr = corr
			bestBits = bits
		}
	}

	result := DecodeResult{Correlation: bestCorr}
	if cfg.Format == cellcfg.PUCCHFormat1 {
		result.Detected = bestCorr >= cfg.Thresholds.Format1Presence
		result.Value.SR = result.Detected
		return result
	}
	result.Detected = bestCorr >= cfg.Thresholds.Format1Presence
	result.Valid = result.Detected && bestCorr >= cfg.Thresholds.DataValidity
	result.Value.ACKBits = bestBits
	return result
}

func bitsOf(v, nBits int) []byte {
	if nBits == 0 {
		return nil
	}
	out := make([]byte, nBits)
	for i := 0; i < nBits; i++ {
		out[nBits-1-i] = byte((v >> uint(i)) & 1)
	}
	return out
}
