package receiver

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/chest"
	"github.com/srs-go/enb-ulphy/internal/numerics"
	"github.com/srs-go/enb-ulphy/internal/pucch"
	"github.com/srs-go/enb-ulphy/internal/sch"
	"github.com/srs-go/enb-ulphy/internal/uci"
)

// qpskPoint mirrors pusch's unit-energy QPSK constellation (build order
// re in {1,-1}, im in {1,-1}, index = 2*bit0+bit1, so bit 0 maps to +1)
// so a synthetic grid can be built from known bits without reaching into
// that package's unexported tables.
func qpskPoint(b0, b1 byte) complex64 {
	re := 1.0
	if b0 == 1 {
		re = -1.0
	}
	im := 1.0
	if b1 == 1 {
		im = -1.0
	}
	return complex64(complex(re/math.Sqrt2, im/math.Sqrt2))
}

// forwardDFT is transform precoding's transmit-side counterpart to
// pusch.InverseTransformPrecode's receive-side directDFT: same unitary
// scale, opposite exponent sign, so that feeding its output back through
// InverseTransformPrecode recovers the original modulation symbols.
func forwardDFT(src []complex64) []complex64 {
	n := len(src)
	out := make([]complex64, n)
	scale := 1.0 / math.Sqrt(float64(n))
	for k := 0; k < n; k++ {
		var acc complex128
		for t := 0; t < n; t++ {
			theta := 2 * math.Pi * float64(k) * float64(t) / float64(n)
			acc += complex128(src[t]) * complex(math.Cos(theta), -math.Sin(theta))
		}
		out[k] = complex64(acc * complex(scale, 0))
	}
	return out
}

// refSequenceLikeEstimator reproduces chest.Estimator.refSequence for the
// no-hopping case (same cell id, group hopping disabled) so a test can
// place DMRS rows an Estimator with the same configuration will recognize
// as a flat, unit-gain channel.
func refSequenceLikeEstimator(pci, n int) []complex64 {
	group := pci % 30
	u := (group + pci) % 30
	if u == 0 {
		u = 1
	}
	return numerics.ZadoffChu(u, n)
}

// buildSyntheticPUSCHUser constructs a noise-free, identity-channel PUSCH
// grid for a single-code-block, QPSK, UCI-free grant, so decodePUSCHUser
// can be exercised end to end without a live radio.
func buildSyntheticPUSCHUser(t *testing.T, cell *cellcfg.Cell, rnti uint16, payload []byte) PUSCHUser {
	t.Helper()
	grant := &cellcfg.Grant{
		RNTI:       rnti,
		PRBs:       cellcfg.NewPRBSet(0, cell.NumPRB),
		Modulation: cellcfg.ModQPSK,
		RV:         0,
		NewData:    true,
	}
	Msc := cell.NumPRB * 12
	nSymb := cell.CP.SymbolsPerSubframe() - 2 // two DMRS symbols removed
	perBlockE := Msc * 2 * nSymb              // Qm=2

	enc, err := sch.EncodeTransportBlock(payload, grant.RV, []int{perBlockE})
	require.NoError(t, err)
	require.Len(t, enc.CodeBlocks, 1)

	matrix := uci.NewMatrix(nSymb, Msc*2, nil)
	chanStream := matrix.Interleave(enc.CodeBlocks[0], nil, nil, nil)

	dmrsSymbols := chest.PUSCHRefSymbols(cell.CP)
	totalSymbols := cell.CP.SymbolsPerSubframe()
	gridRows := make([][]complex64, totalSymbols)

	dataRow := 0
	for sym := 0; sym < totalSymbols; sym++ {
		if sym == dmrsSymbols[0] {
			gridRows[sym] = refSequenceLikeEstimator(cell.PhysicalCellID, Msc)
			continue
		}
		if sym == dmrsSymbols[1] {
			gridRows[sym] = refSequenceLikeEstimator(cell.PhysicalCellID, Msc)
			continue
		}
		chunk := chanStream[dataRow*Msc*2 : (dataRow+1)*Msc*2]
		syms := make([]complex64, Msc)
		for i := 0; i < Msc; i++ {
			syms[i] = qpskPoint(chunk[2*i], chunk[2*i+1])
		}
		gridRows[sym] = forwardDFT(syms)
		dataRow++
	}

	return PUSCHUser{
		RNTI:        rnti,
		Grant:       grant,
		GridRows:    gridRows,
		DMRSSymbols: dmrsSymbols,
	}
}

func TestSnapshotStorePublishAndRead(t *testing.T) {
	s := NewSnapshotStore()
	require.Empty(t, s.Snapshot())

	s.Publish(map[uint16]Measurements{42: {SNRdB: 12.5}})
	got := s.Snapshot()
	require.Contains(t, got, uint16(42))
	require.InDelta(t, 12.5, got[42].SNRdB, 1e-9)
}

func TestFlattenConcatenatesRows(t *testing.T) {
	rows := [][]complex64{{1, 2}, {3, 4}}
	out := flatten(rows)
	require.Len(t, out, 4)
}

func TestBroadcastChWrapsWhenShort(t *testing.T) {
	ch := []complex64{1, 2}
	out := broadcastCh(ch, 5)
	require.Len(t, out, 5)
	require.Equal(t, ch[0], out[2])
}

func newTestCoordinator(t *testing.T, numPRB int) (*Coordinator, *cellcfg.Cell) {
	t.Helper()
	cell, err := cellcfg.NewCell(1, cellcfg.CPNormal, numPRB, cellcfg.FrameFDD, 0)
	require.NoError(t, err)
	est := chest.New(cell, false, false)
	est.PopulateDMRS()
	return NewCoordinator(cell, est, nil), cell
}

func TestDecodePUSCHUserRoundTripsTransportBlock(t *testing.T) {
	c, cell := newTestCoordinator(t, 6)
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte((i * 3) % 2)
	}
	user := buildSyntheticPUSCHUser(t, cell, 0x1001, payload)

	result := c.decodePUSCHUser(context.Background(), user)
	require.True(t, result.Detected)
	require.True(t, result.CRCPass)
	require.Equal(t, payload, result.TransportBlock)
}

func TestDecodePUCCHUserDetectsFormat1a(t *testing.T) {
	c, cell := newTestCoordinator(t, 6)
	cfg := &pucch.Config{
		Cell:        cell,
		Format:      cellcfg.PUCCHFormat1a,
		NPUCCH:      3,
		DeltaShift:  2,
		NCS:         0,
		N1:          0,
		CyclicShift: 0,
		CoverIndex:  0,
		Thresholds:  pucch.Thresholds{Format1Presence: 0, DataValidity: 0},
	}
	value := pucch.Value{ACKBits: []byte{1}}
	symbols := pucch.EncodeFormat1(cfg, value)

	user := PUCCHUser{
		RNTI:    0x2002,
		Config:  cfg,
		Symbols: symbols,
	}
	result := c.decodePUCCHUser(user)
	require.True(t, result.Detected)
	require.Equal(t, []byte{1}, result.UCI.ACKBits)
}

func TestProcessSubframeAggregatesBothKinds(t *testing.T) {
	c, cell := newTestCoordinator(t, 6)
	cfg := &pucch.Config{
		Cell:        cell,
		Format:      cellcfg.PUCCHFormat1a,
		NPUCCH:      3,
		DeltaShift:  2,
		Thresholds:  pucch.Thresholds{Format1Presence: 0, DataValidity: 0},
	}
	symbols := pucch.EncodeFormat1(cfg, pucch.Value{ACKBits: []byte{0}})
	pucchUser := PUCCHUser{RNTI: 0x3003, Config: cfg, Symbols: symbols}

	payload := make([]byte, 16)
	puschUser := buildSyntheticPUSCHUser(t, cell, 0x4004, payload)

	results, snapshot := c.ProcessSubframe(context.Background(), []PUCCHUser{pucchUser}, []PUSCHUser{puschUser})
	require.Len(t, results, 2)
	require.Contains(t, snapshot, uint16(0x3003))
	require.Contains(t, snapshot, uint16(0x4004))
}
