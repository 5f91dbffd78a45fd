// Command ulphy-bench drives the receive chain against synthetic,
// noise-free uplink subframes and reports per-cell CRC pass/fail and
// iteration count, for bench testing the turbo decoder, rate-matching
// tables and the per-subframe coordinator without a live radio.
package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"

	"github.com/charmbracelet/log"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/srs-go/enb-ulphy/internal/chest"
	"github.com/srs-go/enb-ulphy/internal/intake"
	"github.com/srs-go/enb-ulphy/internal/numerics"
	"github.com/srs-go/enb-ulphy/internal/obslog"
	"github.com/srs-go/enb-ulphy/internal/receiver"
	"github.com/srs-go/enb-ulphy/internal/sch"
	"github.com/srs-go/enb-ulphy/internal/uci"
)

func main() {
	var numPRB = pflag.IntP("num-prb", "p", 25, "Cell bandwidth in resource blocks (6, 15, 25, 50, 75, 100).")
	var pci = pflag.IntP("pci", "c", 1, "Physical cell identity.")
	var payloadBytes = pflag.IntP("payload-bytes", "b", 10, "Transport-block payload size in bytes.")
	var rv = pflag.IntP("rv", "r", 0, "Redundancy version (0-3).")
	var maxIterations = pflag.IntP("max-iterations", "i", 10, "Maximum turbo decoder iterations.")
	var numCells = pflag.IntP("num-cells", "n", 1, "Number of independent cell instances to run concurrently (pinned to cores only with --pin-cores).")
	var pin = pflag.Bool("pin-cores", false, "Pin each cell's dedicated thread to its own CPU core (best effort; a failure is logged, not fatal).")
	var advertise = pflag.Bool("advertise", false, "Advertise this run over mDNS/DNS-SD for discovery by bench tooling.")
	var advertisePort = pflag.Int("advertise-port", 4096, "Port advertised alongside the mDNS/DNS-SD service record.")
	var verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - synthetic-channel bench driver for the uplink PHY receive chain.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: ulphy-bench [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := obslog.New(os.Stderr, level).ForCell(*pci)

	if *advertise {
		adv, err := intake.Advertise(context.Background(), "ulphy-bench", *advertisePort, *pci, *numPRB, logger)
		if err != nil {
			logger.Warn("advertise failed", "err", err)
		} else {
			defer adv.Close()
		}
	}

	if *numCells < 1 {
		*numCells = 1
	}

	ctx := context.Background()
	results := make([]*sch.TransportBlockResult, *numCells)

	steps := make([]func(context.Context) error, *numCells)
	for i := 0; i < *numCells; i++ {
		i := i
		steps[i] = func(ctx context.Context) error {
			if *pin {
				if err := receiver.PinToCore(i); err != nil {
					logger.Warn("core pinning unavailable", "cell", i, "err", err)
				}
			}
			cell, err := cellcfg.NewCell(*pci+i, cellcfg.CPNormal, *numPRB, cellcfg.FrameFDD, 0)
			if err != nil {
				return err
			}
			res, err := runOneCell(ctx, cell, *payloadBytes, *rv, *maxIterations)
			results[i] = res
			return err
		}
	}

	if err := receiver.RunCells(ctx, steps); err != nil {
		logger.Error("cell run failed", "err", err)
		os.Exit(1)
	}

	for i, res := range results {
		if res == nil {
			continue
		}
		fmt.Printf("cell=%d crc_pass=%v iterations=%d payload_bytes=%d\n",
			*pci+i, res.CRCPass, maxIter(res.BlockResults), *payloadBytes)
	}
}

// runOneCell builds a coordinator for one synthetic cell instance, feeds
// it a single noise-free, identity-channel PUSCH subframe built from a
// deterministic payload, and returns the decode outcome, exercising the
// same decodePUSCHUser path ulphy-bench previously bypassed by calling
// sch.DecodeTransportBlock directly.
func runOneCell(ctx context.Context, cell *cellcfg.Cell, payloadBytes, rv, maxIterations int) (*sch.TransportBlockResult, error) {
	est := chest.New(cell, false, false)
	est.PopulateDMRS()
	coord := receiver.NewCoordinator(cell, est, nil)
	coord.DecodeCfg = sch.DecodeConfig{MinIterations: 2, MaxIterations: maxIterations}

	payload := make([]byte, payloadBytes*8)
	for i := range payload {
		payload[i] = byte((i * 7) % 2)
	}

	user, err := buildSyntheticPUSCHUser(cell, 0x1001, payload, rv)
	if err != nil {
		return nil, err
	}

	results, _ := coord.ProcessSubframe(ctx, nil, []receiver.PUSCHUser{user})
	if len(results) != 1 {
		return nil, fmt.Errorf("ulphy-bench: expected one PUSCH result, got %d", len(results))
	}
	r := results[0]
	return &sch.TransportBlockResult{
		Payload: r.TransportBlock,
		CRCPass: r.CRCPass,
		BlockResults: []sch.DecodeResult{{Iterations: r.Iterations}},
	}, nil
}

// buildSyntheticPUSCHUser mirrors the receive chain's PUSCH grid layout
// in reverse: it turbo-encodes and rate-matches a payload, channel-
// interleaves it, then maps the result onto a noise-free, identity-
// channel QPSK resource grid so the coordinator's demodulate/decode path
// can be exercised without an SDR.
func buildSyntheticPUSCHUser(cell *cellcfg.Cell, rnti uint16, payload []byte, rv int) (receiver.PUSCHUser, error) {
	grant := &cellcfg.Grant{
		RNTI:       rnti,
		PRBs:       cellcfg.NewPRBSet(0, cell.NumPRB),
		Modulation: cellcfg.ModQPSK,
		RV:         rv,
		NewData:    true,
	}
	msc := cell.NumPRB * 12
	nSymb := cell.CP.SymbolsPerSubframe() - 2
	perBlockE := msc * 2 * nSymb

	enc, err := sch.EncodeTransportBlock(payload, rv, []int{perBlockE})
	if err != nil {
		return receiver.PUSCHUser{}, err
	}

	matrix := uci.NewMatrix(nSymb, msc*2, nil)
	chanStream := matrix.Interleave(enc.CodeBlocks[0], nil, nil, nil)

	dmrsSymbols := chest.PUSCHRefSymbols(cell.CP)
	totalSymbols := cell.CP.SymbolsPerSubframe()
	gridRows := make([][]complex64, totalSymbols)

	dataRow := 0
	for sym := 0; sym < totalSymbols; sym++ {
		if sym == dmrsSymbols[0] || sym == dmrsSymbols[1] {
			gridRows[sym] = refSequence(cell.PhysicalCellID, msc)
			continue
		}
		chunk := chanStream[dataRow*msc*2 : (dataRow+1)*msc*2]
		syms := make([]complex64, msc)
		for i := 0; i < msc; i++ {
			syms[i] = qpskPoint(chunk[2*i], chunk[2*i+1])
		}
		gridRows[sym] = forwardDFT(syms)
		dataRow++
	}

	return receiver.PUSCHUser{
		RNTI:        rnti,
		Grant:       grant,
		GridRows:    gridRows,
		DMRSSymbols: dmrsSymbols,
	}, nil
}

// refSequence reproduces the no-hopping DMRS root-sequence derivation
// internal/chest.Estimator uses, so this synthetic grid presents a flat,
// unit-gain channel to it.
func refSequence(pci, n int) []complex64 {
	group := pci % 30
	u := (group + pci) % 30
	if u == 0 {
		u = 1
	}
	return numerics.ZadoffChu(u, n)
}

// qpskPoint mirrors internal/pusch's unit-energy QPSK constellation (re
// carries the first coded bit, im the second; bit 0 maps to +1).
func qpskPoint(b0, b1 byte) complex64 {
	re := 1.0
	if b0 == 1 {
		re = -1.0
	}
	im := 1.0
	if b1 == 1 {
		im = -1.0
	}
	return complex64(complex(re/math.Sqrt2, im/math.Sqrt2))
}

// forwardDFT is transform precoding's transmit-side counterpart to
// internal/pusch.InverseTransformPrecode's receive-side inverse DFT.
func forwardDFT(src []complex64) []complex64 {
	n := len(src)
	out := make([]complex64, n)
	scale := 1.0 / math.Sqrt(float64(n))
	for k := 0; k < n; k++ {
		var acc complex128
		for t := 0; t < n; t++ {
			theta := 2 * math.Pi * float64(k) * float64(t) / float64(n)
			acc += complex128(src[t]) * complex(math.Cos(theta), -math.Sin(theta))
		}
		out[k] = complex64(acc * complex(scale, 0))
	}
	return out
}

func maxIter(results []sch.DecodeResult) int {
	max := 0
	for _, r := range results {
		if r.Iterations > max {
			max = r.Iterations
		}
	}
	return max
}
