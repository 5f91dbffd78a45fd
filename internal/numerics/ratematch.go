package numerics

import "sync"

// Rate-matching circular-buffer offsets k0(rv), expressed (per 3GPP TS
// 36.212 §5.1.4.1.2) as a count out of 64 sub-block
// units of the circular buffer: k0(rv) in {2,18,34,50} sub-blocks of 64.
var rvFraction = [4]float64{2.0 / 64, 18.0 / 64, 34.0 / 64, 50.0 / 64}

const subblockRows = 32

// RateMatchTables holds, for one code block size K, the permutation that
// maps systematic/parity-1/parity-2 turbo output positions into the
// circular buffer, and the inverse (receive-side accumulation) table. It
// is computed once per K and is read-only thereafter -- the process-wide,
// lazily-initialized table shared across callers.
type RateMatchTables struct {
	K              int // one constituent code block length (bits in, before CRC padding accounted for by caller)
	Kw             int // circular buffer length = 3*KPi
	SubblockLUT    []int // sub-block interleaver permutation, length K (plus dummy padding to KPi)
	KPi            int // interleaved block length (K rounded up to 32 rows)
}

var rmCache sync.Map // K (int) -> *RateMatchTables

// GetRateMatchTables returns the cached tables for code block length K,
// computing them on first use. Safe for concurrent callers across cell
// instances since the table depends only on K.
func GetRateMatchTables(K int) *RateMatchTables {
	if v, ok := rmCache.Load(K); ok {
		return v.(*RateMatchTables)
	}
	t := buildRateMatchTables(K)
	actual, _ := rmCache.LoadOrStore(K, t)
	return actual.(*RateMatchTables)
}

// subblockInterleaverPattern is the standardized column permutation
// pattern P of 3GPP TS 36.212 Table 5.1.4-2 for the 32-column sub-block
// interleaver shared by all three turbo output streams.
var subblockInterleaverPattern = [32]int{
	0, 16, 8, 24, 4, 20, 12, 28, 2, 18, 10, 26, 6, 22, 14, 30,
	1, 17, 9, 25, 5, 21, 13, 29, 3, 19, 11, 27, 7, 23, 15, 31,
}

func buildRateMatchTables(K int) *RateMatchTables {
	rows := (K + subblockRows - 1) / subblockRows
	kPi := rows * subblockRows
	dummy := kPi - K

	// lut[i] = source index in the (dummy-padded) input stream that ends
	// up at output position i after row-then-column write, column-then-row
	// read, matching 3GPP's described sub-block interleaving procedure.
	lut := make([]int, kPi)
	idx := 0
	for c := 0; c < subblockRows; c++ {
		col := subblockInterleaverPattern[c]
		for r := 0; r < rows; r++ {
			srcPos := r*subblockRows + col
			lut[idx] = srcPos - dummy // may be negative for dummy (padding) positions
			idx++
		}
	}
	return &RateMatchTables{
		K:           K,
		Kw:          3 * kPi,
		SubblockLUT: lut,
		KPi:         kPi,
	}
}

// K0 returns the starting bit offset into the circular buffer for
// redundancy version rv, rounded down to a multiple of subblockRows as
// required by 3GPP TS 36.212 §5.1.4.1.2.
func (t *RateMatchTables) K0(rv int) int {
	raw := int(float64(t.Kw) * rvFraction[rv%4])
	return (raw / subblockRows) * subblockRows
}

// CircularPositions returns the E source positions (into a length-Kw
// circular buffer built by concatenating the three interleaved streams)
// read starting at k0(rv), skipping any position whose SubblockLUT entry
// is a dummy pad (negative), matching the "contiguous window starting at
// k0(rv)" rule It keeps advancing past skipped dummy
// positions so exactly E real bit positions are returned.
func (t *RateMatchTables) CircularPositions(rv, e int) []int {
	k0 := t.K0(rv)
	out := make([]int, 0, e)
	pos := k0
	for len(out) < e {
		if pos%t.Kw < t.KPi { // systematic stream: subject to sub-block interleave+dummy removal
			local := pos % t.KPi
			if t.SubblockLUT[local] >= 0 {
				out = append(out, pos%t.Kw)
			}
		} else {
			out = append(out, pos%t.Kw)
		}
		pos++
	}
	return out
}
