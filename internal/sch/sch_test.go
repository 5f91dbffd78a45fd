package sch

import (
	"context"
	"testing"

	"github.com/srs-go/enb-ulphy/internal/numerics"
	"github.com/stretchr/testify/require"
)

// somePermittedSizes samples across the full permitted-size ladder
// (small, mid, and large K) rather than exhaustively running all 188
// entries in every test.
func somePermittedSizes() []int {
	all := numerics.PermittedBlockSizes
	out := []int{all[0], all[1], all[2]}
	for _, frac := range []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1.0} {
		idx := int(frac * float64(len(all)-1))
		out = append(out, all[idx])
	}
	return out
}

func bitsToStrongLLRs(bits []byte, mag float64) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = bitToPM(b) * mag
	}
	return out
}

func TestSegmentSmallBlockNoCRC(t *testing.T) {
	payload := make([]byte, 40) // smallest permitted code-block size
	blocks, err := Segment(payload)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.Equal(t, 40, len(blocks[0].Bits))
	require.Equal(t, 0, blocks[0].FillerBits)
}

func TestSegmentRejectsSizeRequiringFiller(t *testing.T) {
	// 100 bits falls strictly between the permitted sizes 96 and 104;
	// Segment must reject rather than zero-pad to reach a permitted size.
	payload := make([]byte, 100)
	_, err := Segment(payload)
	require.Error(t, err)
}

func TestSegmentLargeBlockAddsCRC(t *testing.T) {
	// 2 blocks of 6120 payload bits + CRC-24B each land exactly on the
	// largest permitted code-block size (6144), so the multi-block path
	// needs no filler either.
	const perBlockPayload = 6144 - crc24BLen
	payload := make([]byte, 2*perBlockPayload)
	for i := range payload {
		payload[i] = byte(i % 2)
	}
	blocks, err := Segment(payload)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		require.Equal(t, 6144, len(b.Bits))
		require.Equal(t, 0, b.FillerBits)
	}
}

func TestQPPInterleaveRoundTrip(t *testing.T) {
	for _, k := range somePermittedSizes() {
		in := make([]byte, k)
		for i := range in {
			in[i] = byte((i * 7) % 2)
		}
		interleaved := QPPInterleave(in)
		back := QPPDeinterleave(interleaved)
		require.Equal(t, in, back, "round trip failed for K=%d", k)
	}
}

func TestQPPCoefficientsAreBijectiveForEveryPermittedSize(t *testing.T) {
	for _, k := range numerics.PermittedBlockSizes {
		f1, f2 := qppCoefficients(k)
		require.True(t, isQPPBijection(f1, f2, k), "K=%d f1=%d f2=%d is not a bijection", k, f1, f2)
	}
}

func TestTurboEncodeProducesThreeEqualLengthStreams(t *testing.T) {
	bits := make([]byte, 40)
	for i := range bits {
		bits[i] = byte(i % 2)
	}
	sys, p1, p2 := TurboEncode(bits)
	require.Len(t, sys, len(bits)+tailLen)
	require.Len(t, p1, len(bits)+tailLen)
	require.Len(t, p2, len(bits)+tailLen)
}

func TestRateMatchDeRateMatchRoundTripNoNoise(t *testing.T) {
	bits := make([]byte, 40)
	for i := range bits {
		bits[i] = byte((i * 3) % 2)
	}
	sys, p1, p2 := TurboEncode(bits)
	k := len(sys)
	e := 200

	for rv := 0; rv < 4; rv++ {
		coded := RateMatch(sys, p1, p2, rv, e)
		require.Len(t, coded, e)

		llrs := bitsToStrongLLRs(coded, 20)
		tables := numerics.GetRateMatchTables(k)
		soft := make([]float64, tables.Kw)
		DeRateMatch(soft, tables, rv, llrs)
		outSys, outP1, outP2 := SplitStreams(soft, tables)
		require.Len(t, outSys, k)
		require.Len(t, outP1, k)
		require.Len(t, outP2, k)
	}
}

func TestDecodeCodeBlockConvergesWithoutNoise(t *testing.T) {
	bits := make([]byte, 64)
	for i := range bits {
		bits[i] = byte((i * 7) % 2)
	}
	sys, p1, p2 := TurboEncode(bits)

	sysLLR := bitsToStrongLLRs(sys, 20)
	p1LLR := bitsToStrongLLRs(p1, 20)
	p2LLR := bitsToStrongLLRs(p2, 20)

	result := DecodeCodeBlock(sysLLR, p1LLR, p2LLR, 0, false, DefaultDecodeConfig)
	require.Equal(t, bits, result.Bits)
}

func TestEncodeDecodeTransportBlockRoundTrip(t *testing.T) {
	payload := make([]byte, 80)
	for i := range payload {
		payload[i] = byte((i * 5) % 2)
	}
	perBlockE := []int{600}
	enc, err := EncodeTransportBlock(payload, 0, perBlockE)
	require.NoError(t, err)
	require.Len(t, enc.CodeBlocks, 1)

	llrs := [][]float64{bitsToStrongLLRs(enc.CodeBlocks[0], 20)}
	sb := NewSoftbuffer(enc.BlockSizes)
	res, err := DecodeTransportBlock(context.Background(), sb, enc.BlockSizes, llrs, 0, []int{0}, []bool{false}, DefaultDecodeConfig)
	require.NoError(t, err)
	require.True(t, res.CRCPass)
	require.Equal(t, payload, res.Payload)
}
