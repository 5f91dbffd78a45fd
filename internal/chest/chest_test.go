package chest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/stretchr/testify/require"
)

func TestEstimatePUSCHFailsWithoutDMRSPopulated(t *testing.T) {
	cell, err := cellcfg.NewCell(1, cellcfg.CPNormal, 6, cellcfg.FrameFDD, 0)
	require.NoError(t, err)
	e := New(cell, false, false)
	_, err = e.EstimatePUSCH(make([]complex64, 12), make([]complex64, 12), 1)
	require.Error(t, err)
}

func TestEstimatePUSCHNoiseConsistency(t *testing.T) {
	cell, err := cellcfg.NewCell(1, cellcfg.CPNormal, 6, cellcfg.FrameFDD, 0)
	require.NoError(t, err)
	e := New(cell, false, false)
	e.PopulateDMRS()

	n := 72
	ref0 := e.refSequence(n, 0)
	ref1 := e.refSequence(n, 1)

	sigma2 := 0.01
	rng := rand.New(rand.NewSource(1))

	addNoise := func(ref []complex64) []complex64 {
		out := make([]complex64, n)
		for i, r := range ref {
			noise := complex(rng.NormFloat64()*math.Sqrt(sigma2/2), rng.NormFloat64()*math.Sqrt(sigma2/2))
			out[i] = r + complex64(noise)
		}
		return out
	}

	rx0 := addNoise(ref0)
	rx1 := addNoise(ref1)

	result, err := e.EstimatePUSCH(rx0, rx1, 1)
	require.NoError(t, err)
	require.Greater(t, result.Noise, 0.0)
}

func TestEstimatePUCCHFormat2bPayloadEnumeration(t *testing.T) {
	cell, err := cellcfg.NewCell(1, cellcfg.CPNormal, 6, cellcfg.FrameFDD, 0)
	require.NoError(t, err)
	e := New(cell, false, false)
	e.PopulateDMRS()

	n := 12
	base := e.refSequence(n, 0)
	shifted := cyclicShiftSeq(base, 0)

	payloadBits := 2
	hyp := 3 // 0b11
	payloadSym := modulatePayload(hyp, payloadBits)
	second := make([]complex64, n)
	for i := range second {
		second[i] = shifted[i] * payloadSym
	}
	slotSymbols := [][]complex64{shifted, second}
	_, bits, err := e.EstimatePUCCH(cellcfg.PUCCHFormat2b, slotSymbols, 0)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 1}, bits)
}

func TestFrequencyHoppingUnsupported(t *testing.T) {
	require.Error(t, FrequencyHoppingUnsupported())
}
