package sch

import "github.com/srs-go/enb-ulphy/internal/numerics"

// Softbuffer holds the per-code-block HARQ soft-combining state for one
// HARQ process. On a retransmission the incoming LLRs are accumulated
// into the existing buffer; on new data (NDI toggled) the buffer is
// reset before the first transmission's LLRs land.
type Softbuffer struct {
	Buffers [][]float64 // one length-Kw slice per code block
}

// NewSoftbuffer allocates a buffer sized for blockSizes (each entry the
// K passed to RateMatch for that code block, i.e. systematic-stream
// length including the trellis tail).
func NewSoftbuffer(blockSizes []int) *Softbuffer {
	sb := &Softbuffer{Buffers: make([][]float64, len(blockSizes))}
	for i, k := range blockSizes {
		tables := numerics.GetRateMatchTables(k)
		sb.Buffers[i] = make([]float64, tables.Kw)
	}
	return sb
}

// Reset zeroes every code block's soft buffer -- called when a grant's
// new-data indicator toggles, discarding any partially-combined
// retransmission state.
func (sb *Softbuffer) Reset() {
	for _, b := range sb.Buffers {
		for i := range b {
			b[i] = 0
		}
	}
}

// ResetBlock zeroes a single code block's buffer, used when that block
// decoded correctly on a prior HARQ round and 3GPP's "don't combine a
// block that already passed" rule applies to a partial retransmission.
func (sb *Softbuffer) ResetBlock(i int) {
	for j := range sb.Buffers[i] {
		sb.Buffers[i][j] = 0
	}
}
