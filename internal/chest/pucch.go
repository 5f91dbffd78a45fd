package chest

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// PUCCHRefSymbols returns the OFDM symbol indices (within one slot)
// carrying the reference signal for the given format
func PUCCHRefSymbols(format cellcfg.PUCCHFormat, cp cellcfg.CPKind) []int {
	switch format {
	case cellcfg.PUCCHFormat1, cellcfg.PUCCHFormat1a, cellcfg.PUCCHFormat1b:
		if cp == cellcfg.CPExtended {
			return []int{2, 3}
		}
		return []int{2, 3, 4}
	default: // Format 2/2a/2b/3
		return []int{1, 5}
	}
}

// EstimatePUCCH correlates the received reference symbols against the
// known cyclic-shifted sequence, averages across all reference symbols in
// the slot, smooths, and (for Format 2a/2b) enumerates the payload
// hypotheses on the second reference symbol and reports the argmax as
// both channel estimate and decoded bits.
func (e *Estimator) EstimatePUCCH(format cellcfg.PUCCHFormat, slotSymbols [][]complex64, cyclicShift int) (*Result, []byte, error) {
	if err := e.checkReady(); err != nil {
		return nil, nil, err
	}
	if len(slotSymbols) == 0 {
		return nil, nil, cellcfg.Newf(cellcfg.InvalidGrant, "chest: no reference symbols supplied")
	}
	n := len(slotSymbols[0])
	base := e.refSequence(n, 0)
	shifted := cyclicShiftSeq(base, cyclicShift)

	switch format {
	case cellcfg.PUCCHFormat2a, cellcfg.PUCCHFormat2b:
		return e.estimateFormat2ab(format, slotSymbols, shifted)
	default:
		ls := make([]complex64, n)
		var acc [128]complex64 // scratch accumulator sized generously; real n <= 12
		accSlice := acc[:n]
		for i := range accSlice {
			accSlice[i] = 0
		}
		for _, sym := range slotSymbols {
			tmp := make([]complex64, n)
			numerics.ConjProd(tmp, sym, shifted)
			for i := range tmp {
				accSlice[i] += tmp[i]
			}
		}
		for i := range ls {
			ls[i] = accSlice[i] / complex(float32(len(slotSymbols)), 0)
		}
		smoothed := smoothAcrossSubcarriers(ls)
		epre, rsrp, noise, snr := estimateMetrics(ls, smoothed)
		return &Result{
			Coeffs:   smoothed,
			Noise:    noise,
			SNRdB:    snr,
			EPREdBfs: dBfs(epre),
			RSRPdBfs: dBfs(rsrp),
		}, nil, nil
	}
}

// estimateFormat2ab enumerates the up to 4 payload hypotheses (1 bit for
// 2a, 2 bits for 2b) on the second reference symbol and returns both the
// channel estimate and the decoded payload bits for the winning
// hypothesis
func (e *Estimator) estimateFormat2ab(format cellcfg.PUCCHFormat, slotSymbols [][]complex64, shifted []complex64) (*Result, []byte, error) {
	n := len(shifted)
	nBits := 1
	if format == cellcfg.PUCCHFormat2b {
		nBits = 2
	}
	first := slotSymbols[0]
	lsFirst := make([]complex64, n)
	numerics.ConjProd(lsFirst, first, shifted)

	second := slotSymbols[len(slotSymbols)-1]

	nHyp := 1 << uint(nBits)
	bestCorr := math.Inf(-1)
	var bestBits []byte
	var bestLS []complex64
	for h := 0; h < nHyp; h++ {
		payload := modulatePayload(h, nBits)
		hyp := make([]complex64, n)
		for i := range shifted {
			hyp[i] = shifted[i] * payload
		}
		ls := make([]complex64, n)
		numerics.ConjProd(ls, second, hyp)
		corr := real(numerics.DotProd(ls, lsFirst))
		if corr > bestCorr {
			bestCorr = corr
			bestBits = bitsOf(h, nBits)
			bestLS = ls
		}
	}
	avg := make([]complex64, n)
	for i := range avg {
		avg[i] = (lsFirst[i] + bestLS[i]) / 2
	}
	smoothed := smoothAcrossSubcarriers(avg)
	epre, rsrp, noise, snr := estimateMetrics(avg, smoothed)
	return &Result{
		Coeffs:   smoothed,
		Noise:    noise,
		SNRdB:    snr,
		EPREdBfs: dBfs(epre),
		RSRPdBfs: dBfs(rsrp),
	}, bestBits, nil
}

func modulatePayload(hypothesis, nBits int) complex64 {
	if nBits == 1 {
		if hypothesis == 0 {
			return 1
		}
		return -1
	}
	// QPSK Gray mapping for 2 bits
	table := []complex64{
		complex(1/math.Sqrt2, 1/math.Sqrt2),
		complex(-1/math.Sqrt2, 1/math.Sqrt2),
		complex(1/math.Sqrt2, -1/math.Sqrt2),
		complex(-1/math.Sqrt2, -1/math.Sqrt2),
	}
	return table[hypothesis]
}

func bitsOf(v, nBits int) []byte {
	out := make([]byte, nBits)
	for i := 0; i < nBits; i++ {
		out[nBits-1-i] = byte((v >> uint(i)) & 1)
	}
	return out
}

// cyclicShiftSeq rotates a Zadoff-Chu-derived base sequence by a cyclic
// shift expressed as a fraction of the sequence length (0..11).
func cyclicShiftSeq(base []complex64, shift int) []complex64 {
	n := len(base)
	out := make([]complex64, n)
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(shift) * float64(k) / 12.0
		out[k] = base[k] * complex64(complex(math.Cos(theta), math.Sin(theta)))
	}
	return out
}
