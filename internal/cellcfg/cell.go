package cellcfg

// CPKind distinguishes normal and extended cyclic prefix
type CPKind int

const (
	CPNormal CPKind = iota
	CPExtended
)

// SymbolsPerSlot returns the OFDM symbol count of one 0.5 ms slot.
func (c CPKind) SymbolsPerSlot() int {
	if c == CPExtended {
		return 6
	}
	return 7
}

// SymbolsPerSubframe returns the OFDM symbol count of one 1 ms subframe.
func (c CPKind) SymbolsPerSubframe() int { return 2 * c.SymbolsPerSlot() }

// FrameStructure selects FDD or TDD duplexing.
type FrameStructure int

const (
	FrameFDD FrameStructure = iota
	FrameTDD
)

// validPRBCounts is the standardized set of supported channel bandwidths,
// expressed as resource-block counts.
var validPRBCounts = map[int]bool{6: true, 15: true, 25: true, 50: true, 75: true, 100: true}

// ValidPRBCounts lists the standardized resource-block counts in
// ascending order, used by tests that sweep every supported bandwidth.
func ValidPRBCounts() []int { return []int{6, 15, 25, 50, 75, 100} }

// Cell is the immutable cell descriptor It is constructed
// once via NewCell and borrowed read-only by every downstream component.
type Cell struct {
	PhysicalCellID  int
	CP              CPKind
	NumPRB          int
	Frame           FrameStructure
	TDDSpecialSFCfg int // only meaningful when Frame == FrameTDD
	FFTSize         int
}

// NewCell validates and constructs a Cell. It is the only way to obtain a
// Cell, so every Cell in the system has already passed validation.
func NewCell(pci int, cp CPKind, numPRB int, frame FrameStructure, tddSpecialSF int) (*Cell, error) {
	if pci < 0 || pci > 503 {
		return nil, Newf(InvalidConfig, "physical cell id %d out of range [0,503]", pci)
	}
	if !validPRBCounts[numPRB] {
		return nil, Newf(InvalidConfig, "unsupported PRB count %d", numPRB)
	}
	if frame == FrameTDD && (tddSpecialSF < 0 || tddSpecialSF > 8) {
		return nil, Newf(InvalidConfig, "tdd special subframe config %d out of range [0,8]", tddSpecialSF)
	}
	return &Cell{
		PhysicalCellID:  pci,
		CP:              cp,
		NumPRB:          numPRB,
		Frame:           frame,
		TDDSpecialSFCfg: tddSpecialSF,
		FFTSize:         fftSizeForPRB(numPRB),
	}, nil
}

// NumSubcarriers is 12 subcarriers per resource block.
func (c *Cell) NumSubcarriers() int { return 12 * c.NumPRB }

// fftSizeForPRB returns the smallest power of two whose occupied
// bandwidth (15 * subcarrier-count kHz, loosely) contains all occupied
// subcarriers, matching the standardized FFT sizes used by eNodeB
// implementations for each channel bandwidth.
func fftSizeForPRB(numPRB int) int {
	occupied := 12 * numPRB
	size := 128
	for size < occupied {
		size *= 2
	}
	// The standard additionally requires 15*occupied kHz sampling rates
	// map onto specific FFT sizes for 6/15/25/50/75/100 PRB; 75 PRB is
	// the one case that does not sit on a clean power-of-two boundary
	// and uses 1536 rather than the next power of two (2048) to keep the
	// sample rate a multiple of 1.92 MHz.
	if numPRB == 75 {
		return 1536
	}
	return size
}

// CPLengths returns the cyclic-prefix length in samples for every symbol
// of one subframe, at the cell's configured FFT size. Symbol 0 of each
// slot is longer under normal CP to make the slot length come out exact.
func (c *Cell) CPLengths() []int {
	n := c.CP.SymbolsPerSubframe()
	out := make([]int, n)
	samplingMultiple := c.FFTSize
	for i := range out {
		symInSlot := i % c.CP.SymbolsPerSlot()
		if c.CP == CPExtended {
			out[i] = (samplingMultiple * 512) / 2048 // 1/4 of symbol length
			continue
		}
		if symInSlot == 0 {
			out[i] = (160 * samplingMultiple) / 2048
		} else {
			out[i] = (144 * samplingMultiple) / 2048
		}
	}
	return out
}
