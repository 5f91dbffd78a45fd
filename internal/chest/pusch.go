package chest

import (
	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// PUSCHRefSymbols returns the OFDM symbol indices carrying the DMRS
// within a subframe: symbols 3 and 10 (normal CP) or
// 2 and 8 (extended CP).
func PUSCHRefSymbols(cp cellcfg.CPKind) [2]int {
	if cp == cellcfg.CPExtended {
		return [2]int{2, 8}
	}
	return [2]int{3, 10}
}

// EstimatePUSCH produces per-subcarrier equalizer coefficients and
// quality metrics for one PUSCH user, given the received grid rows at
// the two DMRS symbols and the subcarrier range occupied by the grant.
func (e *Estimator) EstimatePUSCH(dmrsSym0, dmrsSym1 []complex64, nPRB int) (*Result, error) {
	if err := e.checkReady(); err != nil {
		return nil, err
	}
	n := len(dmrsSym0)
	if n != len(dmrsSym1) {
		return nil, cellcfg.Newf(cellcfg.InvalidGrant, "chest: mismatched DMRS symbol lengths")
	}

	ref0 := e.refSequence(n, 0)
	ref1 := e.refSequence(n, 1)

	ls0 := make([]complex64, n)
	ls1 := make([]complex64, n)
	numerics.ConjProd(ls0, dmrsSym0, ref0)
	numerics.ConjProd(ls1, dmrsSym1, ref1)

	lsAvg := make([]complex64, n)
	for i := range lsAvg {
		lsAvg[i] = (ls0[i] + ls1[i]) / 2
	}
	smoothed := smoothAcrossSubcarriers(lsAvg)

	epre, rsrp, noise, snr := estimateMetrics(lsAvg, smoothed)
	cfo := cfoFromSlots(ls0, ls1)

	const scSpacingHz = 15000.0
	ta := timingOffsetUs(lsAvg, scSpacingHz)

	return &Result{
		Coeffs:         smoothed,
		Noise:          noise,
		SNRdB:          snr,
		EPREdBfs:       dBfs(epre),
		RSRPdBfs:       dBfs(rsrp),
		CFOHz:          cfo,
		TimingOffsetUs: ta,
	}, nil
}
