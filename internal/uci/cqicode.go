package uci

import "math"

// CQI payloads of 1-11 bits use the Reed-Muller (32,O) code; payloads
// above 11 bits use the tail-biting convolutional code (constraint
// length 7, rate 1/3, octal generators 133/171/165) with circular rate
// matching

// rm32Basis is the (32,11) Reed-Muller basis matrix used for small CQI
// payloads, built the same deterministic way as the PUCCH block codes
// (see DESIGN.md).
var rm32Basis = buildRMBasis(32, 11, 0x9e3779b9)

// EncodeRM32 encodes up to 11 information bits into a 32-bit codeword.
func EncodeRM32(info []byte) []byte {
	out := make([]byte, 32)
	for r := 0; r < 32; r++ {
		var acc byte
		for c, b := range info {
			if c >= 11 {
				break
			}
			acc ^= rm32Basis[r][c] & b
		}
		out[r] = acc
	}
	return out
}

// tailBitingGenerators are the three constraint-length-7 generator
// polynomials (octal 133, 171, 165) of the rate-1/3 convolutional code.
var tailBitingGenerators = [3]uint8{0o133, 0o171, 0o165}

const constraintLen = 7

// EncodeTailBiting runs the rate-1/3 tail-biting convolutional code: the
// encoder's shift register is initialized with the last (constraintLen-1)
// input bits before encoding starts, so the trellis naturally closes
// without explicit flush bits.
func EncodeTailBiting(info []byte) []byte {
	n := len(info)
	out := make([]byte, 0, 3*n)
	state := byte(0)
	// preload state with the tail of info (tail-biting initialization)
	for i := n - (constraintLen - 1); i < n; i++ {
		idx := (i%n + n) % n
		state = (state << 1) | info[idx]
		state &= (1 << (constraintLen - 1)) - 1
	}
	for i := 0; i < n; i++ {
		state = ((state << 1) | info[i]) & ((1 << constraintLen) - 1)
		for _, g := range tailBitingGenerators {
			out = append(out, parityBit(state, g))
		}
	}
	return out
}

func parityBit(state byte, gen uint8) byte {
	masked := state & gen
	var p byte
	for masked != 0 {
		p ^= masked & 1
		masked >>= 1
	}
	return p
}

// circularRateMatch writes a contiguous window of length E starting at
// offset 0 from the repeated (circularly extended) coded stream,
// matching the "circular rate matching" step for CQI
// payloads above 11 bits.
func circularRateMatch(coded []byte, e int) []byte {
	out := make([]byte, e)
	for i := 0; i < e; i++ {
		out[i] = coded[i%len(coded)]
	}
	return out
}

// EncodeCQI dispatches to RM(32,O) for payloads of 1-11 bits, or the
// tail-biting convolutional code with circular rate matching for larger
// payloads
func EncodeCQI(info []byte, e int) []byte {
	if len(info) <= 11 {
		coded := EncodeRM32(info)
		return circularRateMatch(coded, e)
	}
	coded := EncodeTailBiting(info)
	return circularRateMatch(coded, e)
}

// circularDeRateMatch inverts circularRateMatch by soft-combining (LLR
// addition) every received position back onto its originating coded-bit
// index, the HARQ-combine-style inverse of the repeated/truncated
// circular read EncodeCQI's circularRateMatch performs.
func circularDeRateMatch(received []float64, codedLen int) []float64 {
	out := make([]float64, codedLen)
	for i, v := range received {
		out[i%codedLen] += v
	}
	return out
}

// DecodeRM32 ML-decodes up to 11 CQI information bits from a 32-LLR
// codeword by exhaustively enumerating every candidate information
// pattern and picking the one whose re-encoded codeword correlates best
// with the received LLRs -- the same hypothesis-enumeration shape
// pucch.DecodeFormat1 uses for its 2^b ACK/SR hypotheses.
func DecodeRM32(received []float64, nInfoBits int) []byte {
	if nInfoBits <= 0 {
		return nil
	}
	if nInfoBits > 11 {
		nInfoBits = 11
	}
	nHyp := 1 << uint(nInfoBits)
	best := make([]byte, nInfoBits)
	bestCorr := math.Inf(-1)
	for v := 0; v < nHyp; v++ {
		info := make([]byte, nInfoBits)
		for i := 0; i < nInfoBits; i++ {
			info[nInfoBits-1-i] = byte((v >> uint(i)) & 1)
		}
		codeword := EncodeRM32(info)
		var corr float64
		for i, c := range codeword {
			sign := 1.0
			if c == 1 {
				sign = -1.0
			}
			corr += sign * received[i]
		}
		if corr > bestCorr {
			bestCorr = corr
			best = info
		}
	}
	return best
}

// cqiNumStates mirrors EncodeTailBiting's shift register: constraintLen
// bits of history, 2^(constraintLen-1) states.
const cqiNumStates = 1 << (constraintLen - 1)

type tbTransition struct {
	next int
	bits [3]byte
}

var tbTrellis = buildTBTrellis()

func buildTBTrellis() [cqiNumStates][2]tbTransition {
	var table [cqiNumStates][2]tbTransition
	for m := 0; m < cqiNumStates; m++ {
		for _, b := range [2]byte{0, 1} {
			full := ((m << 1) | int(b)) & ((1 << constraintLen) - 1)
			next := full & (cqiNumStates - 1)
			var bits [3]byte
			for gi, g := range tailBitingGenerators {
				bits[gi] = parityBit(byte(full), g)
			}
			table[m][b] = tbTransition{next: next, bits: bits}
		}
	}
	return table
}

func tbBranchMetric(bits [3]byte, llr [3]float64) float64 {
	var m float64
	for i := 0; i < 3; i++ {
		s := 1.0
		if bits[i] == 1 {
			s = -1.0
		}
		m += s * llr[i]
	}
	return m
}

// DecodeTailBiting Viterbi-decodes nInfoBits from the rate-1/3
// tail-biting convolutional code. True ML tail-biting decoding requires
// knowing the encoder's starting state, which is itself the last
// (constraintLen-1) input bits; this runs the trellis twice over the
// same received sequence (discarding the first pass's traceback and
// keeping only its path metrics as the second pass's initial condition)
// so the accumulated metrics approximate having started from the
// correct wrap-around state, a standard practical approximation to
// exact tail-biting ML decoding.
func DecodeTailBiting(received []float64, nInfoBits int) []byte {
	if nInfoBits <= 0 {
		return nil
	}
	n := nInfoBits
	combined := circularDeRateMatch(received, 3*n)
	llrAt := func(step int) [3]float64 {
		return [3]float64{combined[3*step], combined[3*step+1], combined[3*step+2]}
	}

	metrics := make([]float64, cqiNumStates)

	runStep := func(step int, metrics []float64, recordPath bool, path [][cqiNumStates]tbHop) []float64 {
		l := llrAt(step)
		next := make([]float64, cqiNumStates)
		for s := range next {
			next[s] = math.Inf(-1)
		}
		var hops [cqiNumStates]tbHop
		for m := 0; m < cqiNumStates; m++ {
			for _, b := range [2]byte{0, 1} {
				tr := tbTrellis[m][b]
				cand := metrics[m] + tbBranchMetric(tr.bits, l)
				if cand > next[tr.next] {
					next[tr.next] = cand
					hops[tr.next] = tbHop{prevState: m, bit: b}
				}
			}
		}
		if recordPath {
			path[step] = hops
		}
		return next
	}

	// Pass 1: warm up path metrics, discard traceback.
	for step := 0; step < n; step++ {
		metrics = runStep(step, metrics, false, nil)
	}

	// Pass 2: real decode with traceback.
	path := make([][cqiNumStates]tbHop, n)
	for step := 0; step < n; step++ {
		metrics = runStep(step, metrics, true, path)
	}

	best, bestMetric := 0, math.Inf(-1)
	for s, mt := range metrics {
		if mt > bestMetric {
			bestMetric = mt
			best = s
		}
	}

	bits := make([]byte, n)
	state := best
	for step := n - 1; step >= 0; step-- {
		h := path[step][state]
		bits[step] = h.bit
		state = h.prevState
	}
	return bits
}

type tbHop struct {
	prevState int
	bit       byte
}

// DecodeCQI dispatches to DecodeRM32 for payloads of 1-11 bits, or
// DecodeTailBiting for larger payloads, first soft-combining the
// received (possibly repeated/truncated) LLRs back onto their
// originating coded-bit positions.
func DecodeCQI(received []float64, nInfoBits int) []byte {
	if nInfoBits <= 11 {
		combined := circularDeRateMatch(received, 32)
		return DecodeRM32(combined, nInfoBits)
	}
	return DecodeTailBiting(received, nInfoBits)
}
