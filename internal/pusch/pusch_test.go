package pusch

import (
	"testing"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/stretchr/testify/require"
)

func TestInverseTransformPrecodeRejectsNonStandardPRB(t *testing.T) {
	_, err := InverseTransformPrecode(nil, 1)
	// 12*1 = 12 = 2^2*3, which IS standardized -- pick a prime count
	// that is not of the 2^a*3^b*5^c form to exercise the rejection path.
	_, err2 := InverseTransformPrecode([][]complex64{make([]complex64, 12*7)}, 7)
	require.NoError(t, err)
	require.Error(t, err2)
}

func TestEqualizeFallsBackToZeroForcingOnZeroNoise(t *testing.T) {
	rx := []complex64{2 + 0i}
	h := []complex64{1 + 0i}
	out := Equalize(rx, h, 0)
	require.InDelta(t, 2.0, real(out[0]), 1e-6)
}

func TestSoftDemodulateSignConvention(t *testing.T) {
	// A QPSK symbol deep in the "00" quadrant should produce large
	// positive LLRs for both bits (LLR positive == likely 0).
	syms := []complex64{complex(1, 1)}
	llrs := SoftDemodulate(syms, cellcfg.ModQPSK, 0.01)
	require.Len(t, llrs, 2)
	for _, l := range llrs {
		require.Greater(t, l, 0.0)
	}
}

func TestExtractDataSubcarriersExcludesDMRS(t *testing.T) {
	rows := make([][]complex64, 14)
	for i := range rows {
		rows[i] = []complex64{complex64(complex(float64(i), 0))}
	}
	data := ExtractDataSubcarriers(rows, [2]int{3, 10})
	require.Len(t, data, 12)
}
