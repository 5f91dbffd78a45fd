// Package config loads the YAML configuration document describing a
// cell, its DMRS/SRS generation parameters, PUCCH resource parameters
// and global feature flags into the internal/cellcfg types every other
// package borrows.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/srs-go/enb-ulphy/internal/cellcfg"
)

// Document is the top-level YAML shape this package parses.
type Document struct {
	Cell   CellSection   `yaml:"cell"`
	DMRS   DMRSSection   `yaml:"dmrs"`
	SRS    SRSSection    `yaml:"srs"`
	PUCCH  PUCCHSection  `yaml:"pucch"`
	Global GlobalSection `yaml:"global"`
}

// CellSection mirrors cellcfg.NewCell's arguments.
type CellSection struct {
	PhysicalCellID  int    `yaml:"physical_cell_id"`
	CyclicPrefix    string `yaml:"cyclic_prefix"` // "normal" or "extended"
	NumPRB          int    `yaml:"num_prb"`
	FrameStructure  string `yaml:"frame_structure"` // "fdd" or "tdd"
	TDDSpecialSFCfg int    `yaml:"tdd_special_subframe_config"`
}

// DMRSSection carries reference-signal generation toggles.
type DMRSSection struct {
	GroupHoppingEnable    bool `yaml:"group_hopping_enable"`
	SequenceHoppingEnable bool `yaml:"sequence_hopping_enable"`
	CyclicShift           int  `yaml:"cyclic_shift"`
}

// SRSSection carries sounding reference signal configuration.
type SRSSection struct {
	Bandwidth     int    `yaml:"bandwidth"`
	Comb          int    `yaml:"comb"`
	CyclicShift   int    `yaml:"cyclic_shift"`
	HoppingPattern string `yaml:"hopping_pattern"`
}

// PUCCHSection carries the cell-wide PUCCH resource parameters.
type PUCCHSection struct {
	DeltaShift int `yaml:"delta_shift"`
	NCS        int `yaml:"n_cs"`
	N1         int `yaml:"n1"`
}

// GlobalSection carries the process-wide feature flags.
type GlobalSection struct {
	Enable256QAM    bool    `yaml:"enable_256qam"`
	Enable8BitLLR   bool    `yaml:"enable_8bit_llr"`
	CFRThresholdDb  float64 `yaml:"cfr_threshold_db"`
	MaxTurboIters   int     `yaml:"max_turbo_iterations"`
}

// Load reads and parses a YAML document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cellcfg.Newf(cellcfg.InvalidConfig, "config: read %s: %v", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cellcfg.Newf(cellcfg.InvalidConfig, "config: parse %s: %v", path, err)
	}
	return &doc, nil
}

// BuildCell constructs a validated cellcfg.Cell from the document's cell
// section.
func (d *Document) BuildCell() (*cellcfg.Cell, error) {
	cp := cellcfg.CPNormal
	if d.Cell.CyclicPrefix == "extended" {
		cp = cellcfg.CPExtended
	}
	frame := cellcfg.FrameFDD
	if d.Cell.FrameStructure == "tdd" {
		frame = cellcfg.FrameTDD
	}
	return cellcfg.NewCell(d.Cell.PhysicalCellID, cp, d.Cell.NumPRB, frame, d.Cell.TDDSpecialSFCfg)
}
