package numerics

// GoldSequence generates the length-31 Gold sequence of 3GPP TS 36.211
// §7.2, used for PBCH/PDSCH/PUCCH/PUSCH scrambling. x1 is fixed by the
// standard; x2 is seeded from the caller-supplied initial state (itself a
// function of cell id, slot number, RNTI etc. depending on channel --
// those derivations live in the calling package, not here, since this
// kernel only knows about the generator polynomial).
type GoldSequence struct {
	x1, x2 uint32
}

// NewGoldSequence seeds x1 at its standardized initial value (1, then
// thirty 0s) and x2 at cInit, truncated to 31 bits.
func NewGoldSequence(cInit uint32) *GoldSequence {
	return &GoldSequence{x1: 1, x2: cInit & 0x7FFFFFFF}
}

func (g *GoldSequence) stepX1() uint32 {
	b := ((g.x1 >> 3) ^ g.x1) & 1
	g.x1 = (g.x1 >> 1) | (b << 30)
	return g.x1 & 1
}

func (g *GoldSequence) stepX2() uint32 {
	b := ((g.x2 >> 3) ^ (g.x2 >> 2) ^ (g.x2 >> 1) ^ g.x2) & 1
	g.x2 = (g.x2 >> 1) | (b << 30)
	return g.x2 & 1
}

// Advance discards n output bits without recording them, used to skip
// the standardized N_C=1600 warm-up offset before the sequence is
// considered valid.
func (g *GoldSequence) Advance(n int) {
	for i := 0; i < n; i++ {
		g.stepX1()
		g.stepX2()
	}
}

// NextBits fills dst with the next len(dst) output bits (0/1 bytes).
func (g *GoldSequence) NextBits(dst []byte) {
	for i := range dst {
		b1 := g.stepX1()
		b2 := g.stepX2()
		dst[i] = byte(b1 ^ b2)
	}
}

// NC is the standardized pseudo-random sequence warm-up length.
const NC = 1600

// GenerateSequence is the convenience entry point used by every channel
// that scrambles with a Gold sequence: it seeds, discards NC warm-up
// bits, and returns the next n output bits.
func GenerateSequence(cInit uint32, n int) []byte {
	g := NewGoldSequence(cInit)
	g.Advance(NC)
	out := make([]byte, n)
	g.NextBits(out)
	return out
}
