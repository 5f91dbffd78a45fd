// Package ofdm implements this package: the time-to-frequency transform
// of one uplink subframe, and the inverse path used only for loopback
// testing of the receive chain.
package ofdm

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// Config carries the front-end's per-cell tunables, all derived once and
// reused for the life of a Cell.
type Config struct {
	Cell              *cellcfg.Cell
	WindowOffset      float64 // fraction of the extended-CP length in [0,1], clamped
	HalfSubcarrierShift bool  // uplink SC-FDMA convention
	PreserveDC        bool
	NormalizeOnRx     bool // off by default; equalizer absorbs scale
	NormalizeOnTx     bool // off unless set; the zero value leaves the inverse transform unnormalized
}

// Demodulator is the receive-direction (time -> frequency) transform.
type Demodulator struct {
	cfg     Config
	fft     *numerics.FFT
	cpLens  []int
}

// NewDemodulator builds a Demodulator for the given configuration. The
// FFT plan is constructed once "computed once,
// read-only" policy for process-wide tables, scoped here to the life of
// the Cell since FFT size is a pure function of PRB count.
func NewDemodulator(cfg Config) (*Demodulator, error) {
	if cfg.Cell == nil {
		return nil, cellcfg.Newf(cellcfg.NotConfigured, "ofdm: cell not configured")
	}
	w := cfg.WindowOffset
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}
	cfg.WindowOffset = w
	return &Demodulator{
		cfg:    cfg,
		fft:    numerics.NewFFT(cfg.Cell.FFTSize, false, cfg.NormalizeOnRx),
		cpLens: cfg.Cell.CPLengths(),
	}, nil
}

// Grid is the frequency-domain resource grid: symbols x
// occupied subcarriers, DC-centred.
type Grid struct {
	Symbols      int
	Subcarriers  int
	Data         [][]complex64 // [symbol][subcarrier], length Subcarriers each
}

func newGrid(symbols, subcarriers int) *Grid {
	g := &Grid{Symbols: symbols, Subcarriers: subcarriers, Data: make([][]complex64, symbols)}
	for i := range g.Data {
		g.Data[i] = make([]complex64, subcarriers)
	}
	return g
}

// Process demodulates one subframe of time-domain samples into a Grid.
// samples must contain exactly the subframe's total sample count (sum of
// FFT size + CP length over every symbol).
func (d *Demodulator) Process(samples []complex64) (*Grid, error) {
	cell := d.cfg.Cell
	nSym := cell.CP.SymbolsPerSubframe()
	nSc := cell.NumSubcarriers()
	grid := newGrid(nSym, nSc)

	fftSize := d.fft.Size()
	extCPLen := d.cpLens[0]
	if cell.CP == cellcfg.CPNormal {
		// window offset is a fraction of the *extended*-CP length even
		// under normal CP
		extCPLen = (512 * fftSize) / 2048
	}
	windowAdvance := int(d.cfg.WindowOffset * float64(extCPLen))

	ptr := 0
	fullBuf := make([]complex64, fftSize)
	fftOut := make([]complex64, fftSize)
	shifted := make([]complex64, fftSize)

	for sym := 0; sym < nSym; sym++ {
		cpLen := d.cpLens[sym]
		ptr += cpLen - windowAdvance
		if ptr < 0 || ptr+fftSize > len(samples) {
			return nil, cellcfg.Newf(cellcfg.InvalidConfig, "ofdm: sample buffer too short for subframe")
		}
		copy(fullBuf, samples[ptr:ptr+fftSize])
		ptr += fftSize

		d.fft.Transform(fftOut, fullBuf)

		theta := 2 * math.Pi * float64(windowAdvance) / float64(fftSize)
		numerics.ApplyPhase(fftOut, fftOut, theta)

		numerics.FFTShift(shifted, fftOut)

		row := extractOccupied(shifted, fftSize, nSc, d.cfg.HalfSubcarrierShift, d.cfg.PreserveDC)
		copy(grid.Data[sym], row)
	}
	return grid, nil
}

// extractOccupied slices the nSc subcarriers centred on DC out of a
// DC-centred fftSize-length vector, applying the half-subcarrier shift
// convention SC-FDMA uplink signals use.
func extractOccupied(shifted []complex64, fftSize, nSc int, halfShift, preserveDC bool) []complex64 {
	center := fftSize / 2
	start := center - nSc/2
	out := make([]complex64, nSc)
	for i := 0; i < nSc; i++ {
		idx := start + i
		if !preserveDC && idx == center {
			idx++ // skip DC carrier, shift window by one
		}
		out[i] = shifted[idx]
	}
	if halfShift {
		applyHalfSubcarrierShift(out)
	}
	return out
}

// applyHalfSubcarrierShift rotates each subcarrier's phase by a linear
// ramp equivalent to a half-subcarrier-spacing frequency shift, the
// uplink SC-FDMA convention
func applyHalfSubcarrierShift(row []complex64) {
	n := len(row)
	for i := range row {
		theta := math.Pi * float64(i) / float64(n)
		row[i] = row[i] * complex64(complex(math.Cos(theta), math.Sin(theta)))
	}
}
