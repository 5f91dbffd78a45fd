package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
cell:
  physical_cell_id: 17
  cyclic_prefix: normal
  num_prb: 25
  frame_structure: fdd
dmrs:
  group_hopping_enable: true
  sequence_hopping_enable: false
  cyclic_shift: 2
pucch:
  delta_shift: 2
  n_cs: 0
  n1: 12
global:
  enable_256qam: false
  enable_8bit_llr: true
  max_turbo_iterations: 10
`

func TestLoadAndBuildCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 17, doc.Cell.PhysicalCellID)
	require.True(t, doc.DMRS.GroupHoppingEnable)

	cell, err := doc.BuildCell()
	require.NoError(t, err)
	require.Equal(t, 25, cell.NumPRB)
}

func TestLoadRejectsUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuildCellPropagatesInvalidConfig(t *testing.T) {
	doc := &Document{Cell: CellSection{PhysicalCellID: 999, NumPRB: 25}}
	_, err := doc.BuildCell()
	require.Error(t, err)
}
