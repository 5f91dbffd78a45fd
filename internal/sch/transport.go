package sch

import (
	"context"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
	"golang.org/x/sync/semaphore"
)

// EncodedTransportBlock holds the per-code-block rate-matched bit
// streams ready for scrambling and modulation-symbol mapping.
type EncodedTransportBlock struct {
	CodeBlocks [][]byte
	BlockSizes []int // systematic-stream length (including tail) per block, for Softbuffer sizing
}

// EncodeTransportBlock appends a transport-block CRC-24A, segments,
// turbo-encodes and rate-matches every code block to its share of e
// coded bits (the caller has already split the grant's total G coded
// bits across code blocks per 3GPP's code-block-size-weighted rule).
func EncodeTransportBlock(payload []byte, rv int, perBlockE []int) (*EncodedTransportBlock, error) {
	withCRC := numerics.CRC24A.AppendBits(payload)
	blocks, err := Segment(withCRC)
	if err != nil {
		return nil, err
	}
	if len(perBlockE) != len(blocks) {
		return nil, cellcfg.Newf(cellcfg.InvalidGrant, "sch: perBlockE has %d entries, want %d code blocks", len(perBlockE), len(blocks))
	}

	out := &EncodedTransportBlock{
		CodeBlocks: make([][]byte, len(blocks)),
		BlockSizes: make([]int, len(blocks)),
	}
	for i, cb := range blocks {
		sys, p1, p2 := TurboEncode(cb.Bits)
		out.CodeBlocks[i] = RateMatch(sys, p1, p2, rv, perBlockE[i])
		out.BlockSizes[i] = len(sys)
	}
	return out, nil
}

// TransportBlockResult is the outcome of decoding every code block of a
// transport block and checking the transport-block CRC-24A.
type TransportBlockResult struct {
	Payload      []byte
	CRCPass      bool
	BlockResults []DecodeResult
}

// DecodeTransportBlock de-rate-matches, soft-combines into sb, and turbo
// decodes every code block in parallel (a worker semaphore lets at most
// four blocks decode at once, see maxParallelBlocks), then
// reassembles and checks the transport-block CRC-24A. fillerBits and
// hasBlockCRC are per-block, mirroring Segment's output.
func DecodeTransportBlock(ctx context.Context, sb *Softbuffer, blockSizes []int, llrsPerBlock [][]float64, rv int, fillerBits []int, hasBlockCRC []bool, cfg DecodeConfig) (*TransportBlockResult, error) {
	n := len(sb.Buffers)
	results := make([]DecodeResult, n)
	sem := semaphore.NewWeighted(int64(maxParallelBlocks(n)))

	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func(i int) {
			defer sem.Release(1)
			results[i] = decodeOneBlock(sb, blockSizes[i], llrsPerBlock[i], rv, fillerBits[i], hasBlockCRC[i], i, cfg)
			errCh <- nil
		}(i)
	}
	for i := 0; i < n; i++ {
		<-errCh
	}

	payloads := make([][]byte, n)
	allPass := true
	for i, r := range results {
		payloads[i] = r.Bits
		if !r.CRCPass {
			allPass = false
		}
	}
	reassembled := Desegment(payloads)

	crcPass := allPass
	payload := reassembled
	if crcPass {
		if len(reassembled) < numerics.CRC24A.Len() {
			crcPass = false
		} else {
			crcPass = numerics.CRC24A.CheckBits(reassembled)
			payload = reassembled[:len(reassembled)-numerics.CRC24A.Len()]
		}
	}

	return &TransportBlockResult{Payload: payload, CRCPass: crcPass, BlockResults: results}, nil
}

func decodeOneBlock(sb *Softbuffer, k int, llrs []float64, rv, fillerBits int, hasBlockCRC bool, idx int, cfg DecodeConfig) DecodeResult {
	tables := numerics.GetRateMatchTables(k)
	DeRateMatch(sb.Buffers[idx], tables, rv, llrs)
	sys, p1, p2 := SplitStreams(sb.Buffers[idx], tables)
	return DecodeCodeBlock(sys, p1, p2, fillerBits, hasBlockCRC, cfg)
}

func maxParallelBlocks(n int) int {
	if n < 1 {
		return 1
	}
	if n > 4 {
		return 4
	}
	return n
}
