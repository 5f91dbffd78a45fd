package cellcfg

import (
	"testing"

	"github.com/srs-go/enb-ulphy/internal/numerics"
	"github.com/stretchr/testify/require"
)

func TestLookupTBSNeverRequiresFillerAfterCRC24A(t *testing.T) {
	for mcs := 0; mcs < 29; mcs++ {
		for _, prb := range []int{1, 6, 7, 25, 50, 100, 110} {
			tbs, _, err := LookupTBS(mcs, prb, false)
			require.NoError(t, err)
			require.True(t, numerics.IsPermittedSize(tbs+crc24ALen),
				"mcs=%d prb=%d tbs=%d: tbs+CRC24A is not a permitted code-block size", mcs, prb, tbs)
		}
	}
}

func TestLookupTBSMonotonicInPRBCount(t *testing.T) {
	prev := 0
	for prb := 1; prb <= 100; prb++ {
		tbs, _, err := LookupTBS(10, prb, false)
		require.NoError(t, err)
		require.GreaterOrEqual(t, tbs, prev)
		prev = tbs
	}
}

func TestLookupTBSRejectsOutOfRangeInputs(t *testing.T) {
	_, _, err := LookupTBS(-1, 10, false)
	require.Error(t, err)
	_, _, err = LookupTBS(0, 0, false)
	require.Error(t, err)
	_, _, err = LookupTBS(0, 111, false)
	require.Error(t, err)
}
