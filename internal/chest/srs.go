package chest

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// SRSResult reports sounding-reference-signal channel magnitude and
// timing only: SRS carries no data to equalize.
type SRSResult struct {
	Magnitude      []float64
	TimingOffsetUs float64
}

// EstimateSRS correlates the designated SC-FDMA symbol against the known
// root sequence and reports magnitude/timing only.
func (e *Estimator) EstimateSRS(srsSymbol []complex64, rootSeq []complex64) (*SRSResult, error) {
	if err := e.checkReady(); err != nil {
		return nil, err
	}
	if len(srsSymbol) != len(rootSeq) {
		return nil, cellcfg.Newf(cellcfg.InvalidGrant, "chest: SRS symbol/root length mismatch")
	}
	ls := make([]complex64, len(srsSymbol))
	numerics.ConjProd(ls, srsSymbol, rootSeq)

	mag := make([]float64, len(ls))
	for i, v := range ls {
		mag[i] = math.Hypot(float64(real(v)), float64(imag(v)))
	}
	const scSpacingHz = 15000.0
	ta := timingOffsetUs(ls, scSpacingHz)
	return &SRSResult{Magnitude: mag, TimingOffsetUs: ta}, nil
}

// FrequencyHoppingUnsupported reports an Unsupported error: the
// intra-subframe frequency-hopping branch of the uplink
// estimator is not implemented, and this chain surfaces that explicitly
// rather than silently accepting the configuration.
func FrequencyHoppingUnsupported() error {
	return cellcfg.Newf(cellcfg.Unsupported, "chest: intra-subframe frequency hopping is not implemented")
}
