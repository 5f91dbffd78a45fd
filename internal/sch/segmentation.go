package sch

import (
	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// maxCodeBlockSize is the largest permitted turbo code-block size before
// segmentation is required (6144 information bits).
const maxCodeBlockSize = numerics.MaxCodeBlockSize

// crc24BLen is the code-block CRC length attached to every block when a
// transport block is segmented into more than one code block.
const crc24BLen = 24

// CodeBlock is one segment of a transport block, ready for turbo coding.
type CodeBlock struct {
	Bits       []byte // payload + CRC-24B (if segmented), length == K
	FillerBits int    // always 0: grants requiring filler are rejected, see Segment
}

// Segment splits a CRC-24A-protected transport block into one or more
// code blocks, attaching a CRC-24B to each block when segmentation
// produces more than one block. The standardized TBS table is
// constructed so that every legitimate grant already lands on a
// permitted turbo code-block size once CRC-24A (and, when segmented,
// CRC-24B) is appended; a grant that would require filler bits to reach
// a permitted size is rejected rather than silently zero-padded, since
// that only happens when the scheduler issued a TBS the standardized
// table does not produce.
func Segment(tbBitsWithCRC []byte) ([]CodeBlock, error) {
	b := len(tbBitsWithCRC)
	if b == 0 {
		return nil, cellcfg.Newf(cellcfg.InvalidGrant, "sch: empty transport block")
	}
	if b <= maxCodeBlockSize {
		if !numerics.IsPermittedSize(b) {
			return nil, cellcfg.Newf(cellcfg.InvalidGrant, "sch: transport block of %d bits is not a permitted code-block size and would require filler", b)
		}
		return []CodeBlock{{Bits: append([]byte(nil), tbBitsWithCRC...)}}, nil
	}

	// C code blocks, each carrying its own CRC-24B.
	c := (b + crc24BLen - 1) / (maxCodeBlockSize - crc24BLen)
	if c < 1 {
		c = 1
	}
	perBlockPayload := (b + c - 1) / c

	blocks := make([]CodeBlock, 0, c)
	pos := 0
	for i := 0; i < c; i++ {
		end := pos + perBlockPayload
		if end > b {
			end = b
		}
		payload := tbBitsWithCRC[pos:end]
		pos = end

		withCRC := numerics.CRC24B.AppendBits(payload)
		if !numerics.IsPermittedSize(len(withCRC)) {
			return nil, cellcfg.Newf(cellcfg.InvalidGrant, "sch: code block %d of %d bits (with CRC-24B) is not a permitted code-block size and would require filler", i, len(withCRC))
		}
		blocks = append(blocks, CodeBlock{Bits: withCRC})
	}
	return blocks, nil
}

// Desegment reassembles decoded code-block payloads (CRC-24B and filler
// already stripped by the caller) back into one transport-block bit
// stream.
func Desegment(blocks [][]byte) []byte {
	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	out := make([]byte, 0, total)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
