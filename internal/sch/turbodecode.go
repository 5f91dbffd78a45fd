package sch

import "github.com/srs-go/enb-ulphy/internal/numerics"

// DecodeConfig controls the iterative turbo decoder.
type DecodeConfig struct {
	MinIterations int // never stop before this many passes, even if CRC passes early
	MaxIterations int
}

// DefaultDecodeConfig matches typical eNodeB operating points: stop as
// soon as the code block's CRC passes, but never before two iterations,
// and never run more than ten.
var DefaultDecodeConfig = DecodeConfig{MinIterations: 2, MaxIterations: 10}

// DecodeResult carries one code block's decode outcome.
type DecodeResult struct {
	Bits       []byte // decoded information bits, filler and CRC-24B already stripped
	CRCPass    bool
	Iterations int
}

// DecodeCodeBlock runs the iterative turbo decoder over one code block's
// de-rate-matched systematic/parity LLR streams (each length K+tailLen,
// K the padded block size including any CRC-24B and filler). fillerBits
// and hasBlockCRC tell the decoder how many leading bits to discard and
// whether to check a CRC-24B (only segmented transport blocks carry
// one -- a single-code-block transport block is gated solely by its
// CRC-24A, checked by the caller after reassembly).
func DecodeCodeBlock(sysLLR, par1LLR, par2LLR []float64, fillerBits int, hasBlockCRC bool, cfg DecodeConfig) DecodeResult {
	k := len(sysLLR) - tailLen
	extrinsic1 := make([]float64, k)

	var aposteriori []float64
	iterations := 0
	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		iterations = iter
		_, ext1 := maxLogDecode(sysLLR, par1LLR, extrinsic1)

		interleavedSys := interleaveLLR(sysLLR[:k], ext1)
		interleavedParity2 := par2LLR

		post2, ext2raw := maxLogDecode(interleavedSys.sys, interleavedParity2, interleavedSys.apriori)
		ext2 := deinterleaveLLR(ext2raw)
		aposteriori = deinterleaveAposteriori(post2)

		extrinsic1 = ext2

		if iter >= cfg.MinIterations {
			bits := hardDecide(aposteriori)
			if checkBlockCRC(bits, fillerBits, hasBlockCRC) {
				return finishDecode(bits, fillerBits, hasBlockCRC, true, iterations)
			}
		}
	}
	bits := hardDecide(aposteriori)
	pass := checkBlockCRC(bits, fillerBits, hasBlockCRC)
	return finishDecode(bits, fillerBits, hasBlockCRC, pass, iterations)
}

type interleavedStreams struct {
	sys     []float64
	apriori []float64
}

// interleaveLLR reorders the systematic channel LLR and the first
// decoder's extrinsic output into the second constituent decoder's
// (QPP-interleaved) bit order. The tail portion of the returned sys
// stream is left at zero LLR: TurboEncode does not transmit the second
// encoder's systematic tail bits.
func interleaveLLR(sys []float64, extrinsic []float64) interleavedStreams {
	k := len(sys)
	idx := make([]byte, k)
	for i := range idx {
		idx[i] = byte(i)
	}
	f1, f2 := qppCoefficients(k)
	permutedSys := make([]float64, k+tailLen)
	permutedApriori := make([]float64, k)
	for i := 0; i < k; i++ {
		pi := (f1*i + f2*i*i) % k
		permutedSys[i] = sys[pi]
		permutedApriori[i] = extrinsic[pi]
	}
	return interleavedStreams{sys: permutedSys, apriori: permutedApriori}
}

// deinterleaveLLR and deinterleaveAposteriori invert the QPP reordering
// interleaveLLR applied, recovering natural bit order.
func deinterleaveLLR(in []float64) []float64 {
	k := len(in)
	f1, f2 := qppCoefficients(k)
	out := make([]float64, k)
	for i := 0; i < k; i++ {
		pi := (f1*i + f2*i*i) % k
		out[pi] = in[i]
	}
	return out
}

func deinterleaveAposteriori(in []float64) []float64 {
	return deinterleaveLLR(in)
}

func hardDecide(llrs []float64) []byte {
	out := make([]byte, len(llrs))
	for i, l := range llrs {
		if l < 0 {
			out[i] = 1
		}
	}
	return out
}

func checkBlockCRC(bits []byte, fillerBits int, hasBlockCRC bool) bool {
	if !hasBlockCRC {
		return true // gated by the transport-block CRC-24A after reassembly
	}
	if fillerBits > len(bits) {
		return false
	}
	payload := bits[fillerBits:]
	return numerics.CRC24B.CheckBits(payload)
}

func finishDecode(bits []byte, fillerBits int, hasBlockCRC bool, pass bool, iterations int) DecodeResult {
	payload := bits
	if fillerBits <= len(bits) {
		payload = bits[fillerBits:]
	}
	if hasBlockCRC && len(payload) >= crc24BLen {
		payload = payload[:len(payload)-crc24BLen]
	}
	return DecodeResult{Bits: payload, CRCPass: pass, Iterations: iterations}
}
