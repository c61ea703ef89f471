// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// TargetFormat identifies the output archive container.
type TargetFormat string

const (
	// TargetCBZ is a zip container with the .cbz extension.
	TargetCBZ TargetFormat = "cbz"
	// TargetCBR is a rar container. Writing it is not implemented.
	TargetCBR TargetFormat = "cbr"
)

// ParseTargetFormat maps the CLI aliases (cbz, z, cbr, r) onto a
// TargetFormat. An empty string selects cbz.
func ParseTargetFormat(s string) (TargetFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cbz", "z", "":
		return TargetCBZ, nil
	case "cbr", "r":
		return TargetCBR, nil
	default:
		return "", fmt.Errorf("%w: %q (valid formats: cbz, z, cbr, r)", ErrUnknownTarget, s)
	}
}

// Ext returns the file extension without the leading dot.
func (f TargetFormat) Ext() string { return string(f) }

// Default settings applied when the config leaves a field zero.
const (
	DefaultDPI          = 150
	DefaultWorkers      = 1
	DefaultPopplerImage = "minidocks/poppler:latest"
	DefaultStateDir     = ".pdf2comic"
)

// ConversionConfig holds settings for one conversion invocation. It is
// built by the CLI layer and passed explicitly; nothing downstream reads
// process-wide state.
type ConversionConfig struct {
	// InputPath is a single document/archive or a directory of them.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath is the output directory. Empty selects the default:
	// the input's directory for single files, <input>_converted for batches.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Format selects the output container.
	Format TargetFormat `json:"format" yaml:"format"`

	// Trim enables border trimming on rasterized pages.
	Trim bool `json:"trim" yaml:"trim"`

	// DPI is the rasterization resolution (default 150).
	DPI int `json:"dpi" yaml:"dpi"`

	// Workers bounds page-level parallelism within one document (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// SkipExisting skips documents whose output archive already exists.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`

	// PopplerImage is the container image used when pdftoppm is not on PATH.
	PopplerImage string `json:"poppler_image" yaml:"poppler_image"`
}

// WithDefaults returns a copy of c with zero fields set to their defaults.
func (c ConversionConfig) WithDefaults() ConversionConfig {
	if c.Format == "" {
		c.Format = TargetCBZ
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.PopplerImage == "" {
		c.PopplerImage = DefaultPopplerImage
	}
	return c
}

// HistoryConfig holds settings for the conversion history ledger.
type HistoryConfig struct {
	// StateDir is the directory holding history.db (default .pdf2comic).
	StateDir string `json:"state_dir" yaml:"state_dir"`

	// MaxResults is the default number of rows listed (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
