package cellcfg

import "github.com/srs-go/enb-ulphy/internal/numerics"

// crc24ALen is the transport-block CRC length added before segmentation;
// approxTBS rounds so that TBS+crc24ALen always lands on a permitted
// code-block size, guaranteeing every (mcsIndex, numPRB) combination
// LookupTBS returns can be segmented by sch.Segment without filler bits.
const crc24ALen = 24

// mcsEntry is one row of mcsTable, which maps a modulation-and-coding-scheme index (0..28, or 0..33
// with 256-QAM enabled) to a modulation order and an approximate coding
// efficiency, itself drawn from the shape of TS 36.213 Table 8.6.1-1.
type mcsEntry struct {
	mod        Modulation
	efficiency float64 // approximate bits/symbol/RE after coding
}

func mcsTable(enable256QAM bool) []mcsEntry {
	t := make([]mcsEntry, 0, 34)
	// MCS 0..9: QPSK, efficiency climbing from ~0.15 to ~0.87 bits/RE
	for i := 0; i < 10; i++ {
		t = append(t, mcsEntry{ModQPSK, 0.15 + float64(i)*0.08})
	}
	// MCS 10..16: 16-QAM, ~0.9 to ~1.9 bits/RE
	for i := 0; i < 7; i++ {
		t = append(t, mcsEntry{Mod16QAM, 0.9 + float64(i)*0.16})
	}
	// MCS 17..28: 64-QAM, ~1.9 to ~4.9 bits/RE
	for i := 0; i < 12; i++ {
		t = append(t, mcsEntry{Mod64QAM, 1.9 + float64(i)*0.27})
	}
	if enable256QAM {
		for i := 0; i < 5; i++ {
			t = append(t, mcsEntry{Mod256QAM, 5.1 + float64(i)*0.7})
		}
	}
	return t
}

// LookupTBS returns the transport block size in bits for (mcsIndex,
// numPRB). This is a deterministic, monotonic approximation of the
// standardized ~3000-entry table (see DESIGN.md); every returned value
// is chosen so that TBS+crc24ALen is already a permitted turbo
// code-block size, so sch.Segment never needs filler bits for a grant
// built from this lookup. Values are capped at 6120 bits (6144 minus
// CRC-24A), however large the allocation.
func LookupTBS(mcsIndex, numPRB int, enable256QAM bool) (int, Modulation, error) {
	table := mcsTable(enable256QAM)
	if mcsIndex < 0 || mcsIndex >= len(table) {
		return 0, 0, Newf(InvalidGrant, "mcs index %d out of table range", mcsIndex)
	}
	if numPRB <= 0 || numPRB > 110 {
		return 0, 0, Newf(InvalidGrant, "prb count %d out of range", numPRB)
	}
	entry := table[mcsIndex]
	res := approxTBS(entry.efficiency, numPRB)
	return res, entry.mod, nil
}

// approxTBS estimates the payload size for one subframe allocation of
// numPRB resource blocks at the given coding efficiency (bits per
// resource element). 12 REs per PRB per symbol and 12 data-bearing
// symbols out of 14 approximates the usable grid after reference-signal
// and control overhead; the raw estimate is then rounded up so that,
// once CRC-24A is appended, the result is exactly a permitted
// code-block size (rather than merely a multiple of 8 bits). An estimate
// whose size with CRC-24A exceeds 6144 is rounded down to 6120 instead.
func approxTBS(efficiency float64, numPRB int) int {
	usableRE := 12 * numPRB * 12
	raw := int(efficiency * float64(usableRE))
	if raw < 1 {
		raw = 1
	}
	padded := numerics.NearestPermittedSize(raw+crc24ALen) - crc24ALen
	if padded < 0 {
		padded = 0
	}
	return padded
}
