package receiver

import (
	"context"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/chest"
	"github.com/srs-go/enb-ulphy/internal/obslog"
	"github.com/srs-go/enb-ulphy/internal/pucch"
	"github.com/srs-go/enb-ulphy/internal/pusch"
	"github.com/srs-go/enb-ulphy/internal/sch"
	"github.com/srs-go/enb-ulphy/internal/uci"
)

// PUCCHUser bundles one subframe's worth of PUCCH processing input for
// one RNTI.
type PUCCHUser struct {
	RNTI     uint16
	Config   *pucch.Config
	Symbols  [][]complex64 // per-symbol resource elements for this user's PRB
	NoiseVar float64
}

// PUSCHUser bundles one subframe's worth of PUSCH processing input for
// one RNTI.
type PUSCHUser struct {
	RNTI        uint16
	Grant       *cellcfg.Grant
	GridRows    [][]complex64 // per-OFDM-symbol rows, this user's PRB set only
	DMRSSymbols [2]int
}

// UserResult is the per-user outcome the coordinator reports back to the
// caller, matching the result-delivery shape: decoded bytes, CRC flag,
// iteration count, UCI value, and measurements.
type UserResult struct {
	RNTI         uint16
	Detected     bool
	CRCPass      bool
	Iterations   int
	TransportBlock []byte
	UCI          pucch.Value
	Measurements Measurements
}

// Coordinator owns one cell's HARQ softbuffers and dedicated-thread
// processing state. It allocates no per-call memory for buffers sized at
// construction time; per-subframe slices are still allocated by the
// package functions it calls until those are reworked to take
// caller-owned scratch space.
type Coordinator struct {
	Cell        *cellcfg.Cell
	Estimator   *chest.Estimator
	DecodeCfg   sch.DecodeConfig
	Log         *obslog.Logger
	softbuffers map[int]*sch.Softbuffer // keyed by HARQ process id
}

// NewCoordinator builds a coordinator for one cell instance.
func NewCoordinator(cell *cellcfg.Cell, estimator *chest.Estimator, log *obslog.Logger) *Coordinator {
	return &Coordinator{
		Cell:        cell,
		Estimator:   estimator,
		DecodeCfg:   sch.DefaultDecodeConfig,
		Log:         log,
		softbuffers: make(map[int]*sch.Softbuffer),
	}
}

// ProcessSubframe dispatches PUCCH users, then PUSCH users -- in that
// order, since PUSCH-carried ACK bits reference PUCCH-side timing
// measurements from the same subframe -- and returns every user's
// result plus a complete measurement snapshot ready for SnapshotStore.Publish.
func (c *Coordinator) ProcessSubframe(ctx context.Context, pucchUsers []PUCCHUser, puschUsers []PUSCHUser) ([]UserResult, map[uint16]Measurements) {
	snapshot := make(map[uint16]Measurements, len(pucchUsers)+len(puschUsers))
	results := make([]UserResult, 0, len(pucchUsers)+len(puschUsers))

	for _, u := range pucchUsers {
		r := c.decodePUCCHUser(u)
		snapshot[u.RNTI] = r.Measurements
		results = append(results, r)
	}
	for _, u := range puschUsers {
		r := c.decodePUSCHUser(ctx, u)
		snapshot[u.RNTI] = r.Measurements
		results = append(results, r)
	}
	return results, snapshot
}

func (c *Coordinator) decodePUCCHUser(u PUCCHUser) UserResult {
	var result pucch.DecodeResult
	switch u.Config.Format {
	case cellcfg.PUCCHFormat1, cellcfg.PUCCHFormat1a, cellcfg.PUCCHFormat1b:
		chEst := make([]complex64, 12)
		for i := range chEst {
			chEst[i] = 1
		}
		result = pucch.DecodeFormat1(u.Config, u.Symbols, chEst)
	case cellcfg.PUCCHFormat2, cellcfg.PUCCHFormat2a, cellcfg.PUCCHFormat2b:
		flat := flatten(u.Symbols)
		result = pucch.DecodeFormat2(u.Config, flat, u.NoiseVar)
	default:
		flat := flatten(u.Symbols)
		result = pucch.DecodeFormat3(u.Config, flat, u.NoiseVar, 11)
	}

	if len(u.Config.Candidates) > 0 && !result.Value.SR {
		ackOnly := *u.Config
		ackOnly.Format = cellcfg.PUCCHFormat1a
		retry := pucch.DecodeFormat1(&ackOnly, u.Symbols, oneVector(12))
		if retry.Correlation > result.Correlation {
			result = retry
		}
	}

	if c.Log != nil {
		c.Log.Info("pucch decode", "rnti", u.RNTI, "detected", result.Detected, "corr", result.Correlation)
	}

	return UserResult{
		RNTI:     u.RNTI,
		Detected: result.Detected,
		UCI:      result.Value,
		Measurements: Measurements{
			PUCCHCorrelation: result.Correlation,
		},
	}
}

func (c *Coordinator) decodePUSCHUser(ctx context.Context, u PUSCHUser) UserResult {
	dmrsResult, err := c.Estimator.EstimatePUSCH(u.GridRows[u.DMRSSymbols[0]], u.GridRows[u.DMRSSymbols[1]], u.Grant.PRBs.Count())
	if err != nil {
		return UserResult{RNTI: u.RNTI, Detected: false}
	}

	dataRows := pusch.ExtractDataSubcarriers(u.GridRows, u.DMRSSymbols)
	precoded, err := pusch.InverseTransformPrecode(dataRows, u.Grant.PRBs.Count())
	if err != nil {
		return UserResult{RNTI: u.RNTI, Detected: false}
	}

	chEst := make([]complex64, len(dmrsResult.Coeffs))
	copy(chEst, dmrsResult.Coeffs)

	var allLLRs []float64
	for _, row := range precoded {
		eq := pusch.Equalize(row, broadcastCh(chEst, len(row)), dmrsResult.Noise)
		allLLRs = append(allLLRs, pusch.SoftDemodulate(eq, u.Grant.Modulation, dmrsResult.Noise)...)
	}

	Msc := u.Grant.PRBs.Count() * 12
	Qm := u.Grant.Modulation.BitsPerSymbol()
	nSymb := len(precoded)
	// K approximates the per-subframe coded-bit capacity the real beta
	// offset scaling is defined against; this grant carries no separate
	// tracked transport-block coded-bit count, so the PUSCH capacity
	// itself stands in.
	K := Msc * Qm * nSymb
	refRows := [2]int{0, nSymb - 1}

	reserved := []uci.Position{}
	ackCols := map[int]bool{}
	var qAck, qRI, qCQI int
	if u.Grant.UCI.ACKBits > 0 {
		qAck = uci.QPrime(u.Grant.UCI.ACKBits, Qm, nSymb, uci.BetaTable(u.Grant.UCI.IOffsetACK), K, Msc)
		ackPos := uci.ACKPositions(qAck, nSymb, refRows)
		reserved = append(reserved, ackPos...)
		for _, p := range ackPos {
			ackCols[p.Col] = true
		}
	}
	if u.Grant.UCI.RIBits > 0 {
		qRI = uci.QPrime(u.Grant.UCI.RIBits, Qm, nSymb, uci.BetaTable(u.Grant.UCI.IOffsetRI), K, Msc)
		reserved = append(reserved, uci.RIPositions(qRI, nSymb, refRows, ackCols)...)
	}
	if u.Grant.UCI.CQI != cellcfg.CQINone && u.Grant.UCI.CQIBits > 0 {
		qCQI = uci.QPrime(u.Grant.UCI.CQIBits, Qm, nSymb, uci.BetaTable(u.Grant.UCI.IOffsetCQI), K, Msc)
		reserved = append(reserved, uci.CQIPositions(qCQI, nSymb)...)
	}

	matrix := uci.NewMatrix(nSymb, Msc*Qm, reserved)
	hardBits := hardDecideLLR(allLLRs)
	dataBits, ackBits, riBits, cqiBits := matrix.Deinterleave(hardBits)

	var uciValue pucch.Value
	if len(ackBits) > 0 {
		uciValue.ACKBits = majorityDecode(ackBits, u.Grant.UCI.ACKBits)
	}
	if len(riBits) > 0 {
		ri := majorityDecode(riBits, u.Grant.UCI.RIBits)
		if len(ri) > 0 && ri[0] == 1 {
			uciValue.SR = true
		}
	}
	var cqiValue []byte
	if len(cqiBits) > 0 {
		cqiLLRs := llrFromHardBits(cqiBits)
		cqiValue = uci.DecodeCQI(cqiLLRs, u.Grant.UCI.CQIBits)
	}

	sb, ok := c.softbuffers[u.Grant.HARQProcessID]
	if !ok || u.Grant.NewData {
		sizes := []int{len(dataBits)}
		sb = sch.NewSoftbuffer(sizes)
		c.softbuffers[u.Grant.HARQProcessID] = sb
	}

	llrsPerBlock := [][]float64{llrFromHardBits(dataBits)}
	blockSizes := []int{len(dataBits)}
	txResult, err := sch.DecodeTransportBlock(ctx, sb, blockSizes, llrsPerBlock, u.Grant.RV, []int{0}, []bool{false}, c.DecodeCfg)
	if err != nil {
		return UserResult{RNTI: u.RNTI, Detected: true}
	}
	if txResult.CRCPass {
		sb.Reset()
	}

	uciValue.CQI = cqiValue

	return UserResult{
		RNTI:           u.RNTI,
		Detected:       true,
		CRCPass:        txResult.CRCPass,
		Iterations:     maxIterations(txResult.BlockResults),
		TransportBlock: txResult.Payload,
		UCI:            uciValue,
		Measurements: Measurements{
			SNRdB:            dmrsResult.SNRdB,
			EPREdBfs:         dmrsResult.EPREdBfs,
			RSRPdBfs:         dmrsResult.RSRPdBfs,
			CFOHz:            dmrsResult.CFOHz,
			TimingOffsetUs:   dmrsResult.TimingOffsetUs,
			PUSCHCorrelation: dmrsResult.Noise,
		},
	}
}

// majorityDecode repeats the tail-biting/repetition-coded ACK or RI bit
// pattern down to its nominal bit count by majority vote across the
// repeated reserved positions, mirroring how pucch.DecodeFormat1 recovers
// a single ACK bit from multiple repeated correlations.
func majorityDecode(bits []byte, nBits int) []byte {
	if nBits <= 0 {
		nBits = 1
	}
	out := make([]byte, nBits)
	counts := make([]int, nBits)
	for i, b := range bits {
		if b == 1 {
			counts[i%nBits]++
		}
	}
	reps := (len(bits) + nBits - 1) / nBits
	for i, c := range counts {
		if c*2 > reps {
			out[i] = 1
		}
	}
	return out
}

func flatten(rows [][]complex64) []complex64 {
	var out []complex64
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func oneVector(n int) []complex64 {
	v := make([]complex64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func broadcastCh(chEst []complex64, n int) []complex64 {
	if len(chEst) >= n {
		return chEst[:n]
	}
	out := make([]complex64, n)
	for i := range out {
		out[i] = chEst[i%len(chEst)]
	}
	return out
}

func hardDecideLLR(llrs []float64) []byte {
	out := make([]byte, len(llrs))
	for i, l := range llrs {
		if l < 0 {
			out[i] = 1
		}
	}
	return out
}

func llrFromHardBits(bits []byte) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		if b == 0 {
			out[i] = 20
		} else {
			out[i] = -20
		}
	}
	return out
}

func maxIterations(results []sch.DecodeResult) int {
	max := 0
	for _, r := range results {
		if r.Iterations > max {
			max = r.Iterations
		}
	}
	return max
}
