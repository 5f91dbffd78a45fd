package numerics

// MaxCodeBlockSize is the largest permitted turbo code-block size before
// segmentation into multiple code blocks is required (6144 information
// bits, 3GPP TS 36.212 §5.1.2).
const MaxCodeBlockSize = 6144

// PermittedBlockSizes is a deterministic, monotonically increasing
// stand-in for the literal 188-entry turbo-code block size table: finer
// granularity at small K, coarser at large K, the same shape the real
// table has. See DESIGN.md for why this isn't a transcription of the
// 3GPP table. It is the single source of truth for "permitted" sizes:
// both the TBS lookup and code-block segmentation round to entries of
// this table so that a TBS produced by LookupTBS never requires filler
// bits once CRC-24A has been appended.
var PermittedBlockSizes = buildPermittedBlockSizes()

func buildPermittedBlockSizes() []int {
	sizes := []int{}
	step := 8
	for k := 40; k <= MaxCodeBlockSize; k += step {
		sizes = append(sizes, k)
		switch {
		case k >= 2048:
			step = 64
		case k >= 1024:
			step = 32
		case k >= 512:
			step = 16
		}
	}
	return sizes
}

// NearestPermittedSize returns the smallest permitted block size >= want,
// or the largest permitted size (MaxCodeBlockSize) when want exceeds it.
func NearestPermittedSize(want int) int {
	for _, k := range PermittedBlockSizes {
		if k >= want {
			return k
		}
	}
	return PermittedBlockSizes[len(PermittedBlockSizes)-1]
}

// IsPermittedSize reports whether want is already an entry of
// PermittedBlockSizes, i.e. segmenting to it would need no filler bits.
func IsPermittedSize(want int) bool {
	return NearestPermittedSize(want) == want
}
