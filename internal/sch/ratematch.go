package sch

import "github.com/srs-go/enb-ulphy/internal/numerics"

// buildCircularBuffer lays systematic, parity1 and parity2 out into one
// length-Kw circular buffer, each stream independently sub-block
// interleaved by the shared 32-column pattern (numerics.RateMatchTables
// uses one LUT for all three streams rather than the per-stream variants
// 3GPP's table spells out separately; see DESIGN.md).
func buildCircularBuffer(tables *numerics.RateMatchTables, systematic, parity1, parity2 []byte) []byte {
	buf := make([]byte, tables.Kw)
	interleaveOne := func(stream []byte, base int) {
		for local, src := range tables.SubblockLUT {
			if src < 0 || src >= len(stream) {
				buf[base+local] = 0
				continue
			}
			buf[base+local] = stream[src]
		}
	}
	interleaveOne(systematic, 0)
	interleaveOne(parity1, tables.KPi)
	interleaveOne(parity2, 2*tables.KPi)
	return buf
}

// RateMatch produces the E-bit transmitted stream for one code block at
// redundancy version rv, wrapping buildCircularBuffer and
// RateMatchTables.CircularPositions.
func RateMatch(systematic, parity1, parity2 []byte, rv, e int) []byte {
	k := len(systematic)
	tables := numerics.GetRateMatchTables(k)
	buf := buildCircularBuffer(tables, systematic, parity1, parity2)
	positions := tables.CircularPositions(rv, e)
	out := make([]byte, e)
	for i, p := range positions {
		out[i] = buf[p]
	}
	return out
}

// DeRateMatch scatters E received LLRs back into a length-Kw soft
// buffer, summing onto whatever was already present (HARQ soft
// combining) rather than overwriting, and returns the three constituent
// streams' LLRs by un-interleaving softBuf.
func DeRateMatch(softBuf []float64, tables *numerics.RateMatchTables, rv int, llrs []float64) {
	positions := tables.CircularPositions(rv, len(llrs))
	for i, p := range positions {
		softBuf[p] += llrs[i]
	}
}

// SplitStreams un-interleaves a length-Kw soft buffer back into the
// systematic/parity1/parity2 LLR streams, each length K (K derived from
// tables.K), ready for the turbo decoder.
func SplitStreams(softBuf []float64, tables *numerics.RateMatchTables) (sys, par1, par2 []float64) {
	deinterleaveOne := func(base int) []float64 {
		out := make([]float64, tables.K)
		for local, src := range tables.SubblockLUT {
			if src < 0 || src >= len(out) {
				continue
			}
			out[src] = softBuf[base+local]
		}
		return out
	}
	return deinterleaveOne(0), deinterleaveOne(tables.KPi), deinterleaveOne(2 * tables.KPi)
}
