package pucch

import (
	"testing"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/stretchr/testify/require"
)

func testCell(t *testing.T) *cellcfg.Cell {
	t.Helper()
	c, err := cellcfg.NewCell(1, cellcfg.CPNormal, 25, cellcfg.FrameFDD, 0)
	require.NoError(t, err)
	return c
}

// TestFormat1aAckDecode mirrors the worked example: Format 1a PUCCH at
// n_pucch=1, delta_shift=1, N_cs=0, ACK=1, decoded with no channel
// impairment -- correlation should clear the presence threshold and the
// decoded ACK bit should be 1.
func TestFormat1aAckDecode(t *testing.T) {
	cfg := &Config{
		Cell:        testCell(t),
		Format:      cellcfg.PUCCHFormat1a,
		NPUCCH:      1,
		DeltaShift:  1,
		NCS:         0,
		CyclicShift: 0,
		CoverIndex:  0,
		Thresholds:  Thresholds{Format1Presence: 0.1, DataValidity: 0.1},
	}
	value := Value{ACKBits: []byte{1}}
	symbols := EncodeFormat1(cfg, value)

	chEst := make([]complex64, 12)
	for i := range chEst {
		chEst[i] = 1
	}
	result := DecodeFormat1(cfg, symbols, chEst)
	require.True(t, result.Detected)
	require.Equal(t, []byte{1}, result.Value.ACKBits)
}

func TestFormat1PresenceOnly(t *testing.T) {
	cfg := &Config{
		Cell:       testCell(t),
		Format:     cellcfg.PUCCHFormat1,
		NPUCCH:     3,
		DeltaShift: 1,
		Thresholds: Thresholds{Format1Presence: 0.1},
	}
	symbols := EncodeFormat1(cfg, Value{})
	chEst := make([]complex64, 12)
	for i := range chEst {
		chEst[i] = 1
	}
	result := DecodeFormat1(cfg, symbols, chEst)
	require.True(t, result.Detected)
	require.True(t, result.Value.SR)
}

func TestRM20EncodeDecodeRoundTrip(t *testing.T) {
	info := []byte{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 1}
	coded := EncodeRM20(info)
	llrs := make([]float64, 20)
	for i, b := range coded {
		if b == 0 {
			llrs[i] = 10
		} else {
			llrs[i] = -10
		}
	}
	decoded, _ := DecodeRM20(llrs)
	require.Equal(t, info, decoded)
}

// TestFormat3RoundTrip mirrors the worked example: 10 ACK bits plus SR=1.
func TestFormat3RoundTrip(t *testing.T) {
	cfg := &Config{
		Cell:       testCell(t),
		Format:     cellcfg.PUCCHFormat3,
		Thresholds: Thresholds{Format1Presence: 0, DataValidity: 0},
	}
	ackBits := []byte{1, 0, 1, 0, 1, 1, 0, 0, 1, 0}
	info := append(append([]byte{}, ackBits...), 1) // SR=1 appended
	symbols := EncodeFormat3(cfg, info)

	result := DecodeFormat3(cfg, symbols, 0.01, len(info))
	require.True(t, result.Valid)
	require.Equal(t, ackBits, result.Value.ACKBits)
	require.True(t, result.Value.SR)
}

func TestCollisionDetector(t *testing.T) {
	cell := testCell(t)
	a := &Config{Cell: cell, Format: cellcfg.PUCCHFormat1a, NPUCCH: 1, DeltaShift: 1, CoverIndex: 0}
	b := &Config{Cell: cell, Format: cellcfg.PUCCHFormat1a, NPUCCH: 1, DeltaShift: 1, CoverIndex: 0}
	require.True(t, Collision(a, b))

	c := &Config{Cell: cell, Format: cellcfg.PUCCHFormat1a, NPUCCH: 13, DeltaShift: 1, CoverIndex: 0}
	require.False(t, Collision(a, c))
}
