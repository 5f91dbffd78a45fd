// Package pucch implements the PUCCH processor. It is state-free given
// a cell and per-subframe configuration; every exported function takes
// its configuration as a borrowed input rather than storing it, to avoid
// config-with-back-pointer cycles.
package pucch

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// Thresholds holds the three configurable detection scalars used to
// decide presence/validity. The Format3 threshold has no standardized
// default; callers set it explicitly. A threshold is a minimum score, so
// a zero value accepts every hypothesis whose score is >= 0.
type Thresholds struct {
	DMRSCorrelation float64 // default 0 == disabled
	Format1Presence float64
	DataValidity    float64
}

// Config is the per-subframe PUCCH configuration borrowed by Encode/
// Decode; it is never stored by this package.
type Config struct {
	Cell        *cellcfg.Cell
	Format      cellcfg.PUCCHFormat
	NPUCCH      int
	DeltaShift  int
	NCS         int
	N1          int
	CyclicShift int
	CoverIndex  int
	Thresholds  Thresholds
	// Candidates lists resource indices considered under channel-
	// selection mode; empty means single-resource mode.
	Candidates []int
}

// Value is the decoded/encoded UCI payload
type Value struct {
	ACKBits []byte
	SR      bool
	CQI     []byte
}

// DecodeResult carries the detection outcome and correlation metric
// alongside the decoded Value (Detected distinct from
// DecodeFailed -- Detected=false here means the presence test did not
// trigger, not that decoding was attempted and failed).
type DecodeResult struct {
	Detected    bool
	Valid       bool
	Correlation float64
	Value       Value
	ResourceIdx int
}

// resourceShiftAndPRB derives (cyclic shift, PRB index) from the resource
// arithmetic of 3GPP TS 36.211 §5.4.1/5.4.3, the n_pucch -> (n_cs, PRB)
// mapping srsRAN's pucch.c implements in srslte_pucch_n_cs_cell /
// srslte_pucch_format_n_pucch.
func resourceShiftAndPRB(cfg *Config, nPUCCH int) (cyclicShift, prb int) {
	ncsCell := 12 / gcdOrOne(cfg.DeltaShift, 12)
	switch cfg.Format {
	case cellcfg.PUCCHFormat1, cellcfg.PUCCHFormat1a, cellcfg.PUCCHFormat1b:
		cPrime := nPUCCH - cfg.NCS/cfg.DeltaShift
		if cPrime < 0 {
			cPrime = nPUCCH
		}
		prb = cPrime / (ncsCell)
		cyclicShift = cPrime % ncsCell
	default:
		prb = nPUCCH / 12
		cyclicShift = nPUCCH % 12
	}
	return
}

func gcdOrOne(a, b int) int {
	if a <= 0 {
		return 1
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// baseSequence returns the length-12 cyclic-shifted Zadoff-Chu base
// sequence for one PRB of PUCCH
func baseSequence(cell *cellcfg.Cell, cyclicShift int) []complex64 {
	u := (cell.PhysicalCellID % 30) + 1
	base := numerics.ZadoffChu(u, 11) // length must be prime < 12; 11 is the standardized PUCCH root length
	// extend to 12 samples by cyclic extension (standard practice for
	// length-11 ZC sequences mapped onto 12-subcarrier PRBs)
	ext := make([]complex64, 12)
	copy(ext, base)
	ext[11] = base[0]
	out := make([]complex64, 12)
	for k := 0; k < 12; k++ {
		theta := 2 * math.Pi * float64(cyclicShift) * float64(k) / 12.0
		out[k] = ext[k] * complex64(complex(math.Cos(theta), math.Sin(theta)))
	}
	return out
}

// coverCode returns the length-4 (normal CP) orthogonal cover code used
// to spread one RS/data symbol across the four symbols of a PUCCH slot
// half, from the standardized Walsh/DFT cover set.
func coverCode(index int) []complex64 {
	tables := [][]complex64{
		{1, 1, 1, 1},
		{1, complex64(complex(math.Cos(2*math.Pi/3), math.Sin(2*math.Pi/3))), complex64(complex(math.Cos(4*math.Pi/3), math.Sin(4*math.Pi/3))), 1},
		{1, complex64(complex(math.Cos(4*math.Pi/3), math.Sin(4*math.Pi/3))), complex64(complex(math.Cos(2*math.Pi/3), math.Sin(2*math.Pi/3))), 1},
	}
	return tables[index%len(tables)]
}

// Collision reports whether two PUCCH configurations would occupy the
// same resource element, a pure function used to validate scheduling
// decisions before transmission
func Collision(a, b *Config) bool {
	csA, prbA := resourceShiftAndPRB(a, a.NPUCCH)
	csB, prbB := resourceShiftAndPRB(b, b.NPUCCH)
	if prbA != prbB {
		return false
	}
	if a.Format != b.Format {
		// different formats in the same PRB still collide if their
		// cyclic shift separation is below delta_shift, per 36.211.
		return absInt(csA-csB) < minInt(a.DeltaShift, b.DeltaShift)
	}
	return csA == csB && a.CoverIndex == b.CoverIndex
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
