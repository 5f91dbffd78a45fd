package sch

// tailLen is the number of trellis-termination tail bits appended to
// each constituent encoder's output.
const tailLen = 3

// TurboEncode runs the rate-1/3 turbo encoder over one code block's bits
// (including any filler/CRC already folded in), returning the three
// output streams: systematic, parity from the first constituent encoder,
// and parity from the second (which runs over the QPP-interleaved
// order). Each stream carries len(bits)+tailLen symbols -- the trellis
// termination tail is rate-matched along with the rest of the block.
func TurboEncode(bits []byte) (systematic, parity1, parity2 []byte) {
	p1, _ := RSCEncode(bits)
	interleaved := QPPInterleave(bits)
	p2, _ := RSCEncode(interleaved)

	sysTail, p1Tail := terminateTrellis(bits)
	_, p2Tail := terminateTrellis(interleaved)

	systematic = append(append([]byte{}, bits...), sysTail...)
	parity1 = append(append([]byte{}, p1...), p1Tail...)
	parity2 = append(append([]byte{}, p2...), p2Tail...)
	return systematic, parity1, parity2
}

// terminateTrellis drives a fresh encoder over bits to find the state it
// ends in, then emits tailLen systematic/parity pairs that force that
// encoder back to the all-zero state.
func terminateTrellis(bits []byte) (sysTail, parityTail []byte) {
	state := 0
	for _, b := range bits {
		next, _, _ := trellisStep(state, b)
		state = next
	}
	sysTail = make([]byte, tailLen)
	parityTail = make([]byte, tailLen)
	for i := 0; i < tailLen; i++ {
		// The bit that zeros the feedback tap is the one actually
		// transmitted as the systematic tail bit.
		fb := parityOfMask(state<<1, feedback)
		next, _, p := trellisStep(state, fb)
		sysTail[i] = fb
		parityTail[i] = p
		state = next
	}
	return sysTail, parityTail
}
