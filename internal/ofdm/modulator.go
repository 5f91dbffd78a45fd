package ofdm

import (
	"math"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/numerics"
)

// Modulator is the inverse (frequency -> time) path, used only for
// loopback tests of the receive chain -- this module
// never drives an actual transmit RF path.
type Modulator struct {
	cfg    Config
	ifft   *numerics.FFT
	cpLens []int
	// CFR (crest-factor reduction): optional amplitude clipping, repeated
	// CFRIterations times. No filtering pass follows the clip.
	CFREnabled   bool
	CFRThreshold float64 // linear amplitude clip threshold
	TargetPAPR   float64 // dB; stored only, the clipping loop does not read it
	CFRIterations int
}

// NewModulator mirrors NewDemodulator but for the inverse path.
func NewModulator(cfg Config) (*Modulator, error) {
	if cfg.Cell == nil {
		return nil, cellcfg.Newf(cellcfg.NotConfigured, "ofdm: cell not configured")
	}
	return &Modulator{
		cfg:    cfg,
		ifft:   numerics.NewFFT(cfg.Cell.FFTSize, true, cfg.NormalizeOnTx),
		cpLens: cfg.Cell.CPLengths(),
	}, nil
}

// Process modulates a Grid back into a time-domain sample stream.
func (m *Modulator) Process(grid *Grid) []complex64 {
	cell := m.cfg.Cell
	fftSize := m.ifft.Size()
	total := 0
	for _, cp := range m.cpLens {
		total += cp + fftSize
	}
	out := make([]complex64, 0, total)

	full := make([]complex64, fftSize)
	unshifted := make([]complex64, fftSize)
	timeDom := make([]complex64, fftSize)

	for sym := 0; sym < cell.CP.SymbolsPerSubframe(); sym++ {
		placeOccupied(full, grid.Data[sym], fftSize, m.cfg.HalfSubcarrierShift, m.cfg.PreserveDC)
		numerics.FFTShift(unshifted, full) // shift is its own inverse
		m.ifft.Transform(timeDom, unshifted)

		if m.CFREnabled {
			applyCFR(timeDom, m.CFRThreshold, m.CFRIterations)
		}

		cpLen := m.cpLens[sym]
		out = append(out, timeDom[fftSize-cpLen:]...)
		out = append(out, timeDom...)
	}
	return out
}

func placeOccupied(full []complex64, row []complex64, fftSize int, halfShift, preserveDC bool) {
	for i := range full {
		full[i] = 0
	}
	nSc := len(row)
	center := fftSize / 2
	start := center - nSc/2
	work := make([]complex64, nSc)
	copy(work, row)
	if halfShift {
		for i := range work {
			theta := -math.Pi * float64(i) / float64(nSc)
			work[i] = work[i] * complex64(complex(math.Cos(theta), math.Sin(theta)))
		}
	}
	for i := 0; i < nSc; i++ {
		idx := start + i
		if !preserveDC && idx == center {
			idx++
		}
		full[idx] = work[i]
	}
}

// applyCFR clips samples whose magnitude exceeds threshold, repeating the
// clip pass iterations times. No smoothing or filtering is applied, so the
// spectral regrowth a hard clip introduces is not limited.
func applyCFR(x []complex64, threshold float64, iterations int) {
	if threshold <= 0 {
		return
	}
	for iter := 0; iter < iterations; iter++ {
		for i, v := range x {
			mag := math.Hypot(float64(real(v)), float64(imag(v)))
			if mag > threshold {
				scale := threshold / mag
				x[i] = complex64(complex(float64(real(v))*scale, float64(imag(v))*scale))
			}
		}
	}
}
