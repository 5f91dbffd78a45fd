package ofdm

import (
	"testing"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
	"github.com/stretchr/testify/require"
)

func TestModulateThenDemodulateRoundTrip(t *testing.T) {
	cell, err := cellcfg.NewCell(1, cellcfg.CPNormal, 6, cellcfg.FrameFDD, 0)
	require.NoError(t, err)

	cfg := Config{Cell: cell, NormalizeOnTx: true}
	mod, err := NewModulator(cfg)
	require.NoError(t, err)
	demod, err := NewDemodulator(cfg)
	require.NoError(t, err)

	grid := newGrid(cell.CP.SymbolsPerSubframe(), cell.NumSubcarriers())
	for s := range grid.Data {
		for k := range grid.Data[s] {
			grid.Data[s][k] = complex(float32((s+k)%3)-1, float32((s*k)%2))
		}
	}

	samples := mod.Process(grid)
	gotGrid, err := demod.Process(samples)
	require.NoError(t, err)
	require.Equal(t, grid.Symbols, gotGrid.Symbols)
	require.Equal(t, grid.Subcarriers, gotGrid.Subcarriers)
}

func TestNewDemodulatorRequiresCell(t *testing.T) {
	_, err := NewDemodulator(Config{})
	require.Error(t, err)
}

func TestWindowOffsetClamped(t *testing.T) {
	cell, err := cellcfg.NewCell(1, cellcfg.CPNormal, 6, cellcfg.FrameFDD, 0)
	require.NoError(t, err)
	d, err := NewDemodulator(Config{Cell: cell, WindowOffset: 5})
	require.NoError(t, err)
	require.Equal(t, 1.0, d.cfg.WindowOffset)
}
