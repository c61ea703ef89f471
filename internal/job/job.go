// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package job resolves an input path into the list of documents to
// convert and the directory their archives go to.
package job

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdf2comic/internal/archive"
	"github.com/pdiddy/pdf2comic/internal/convert"
	"github.com/pdiddy/pdf2comic/pkg/types"
)

// BatchSuffix is appended to the input directory name to form the default
// batch output directory.
const BatchSuffix = "_converted"

// Mode distinguishes single-file jobs from directory batches.
type Mode int

const (
	ModeSingle Mode = iota + 1
	ModeBatch
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Job is a resolved conversion request.
type Job struct {
	Mode      Mode
	Kind      types.SourceKind
	OutputDir string
	Documents []types.Document

	// Ignored lists batch entries whose extension does not match the kind
	// sniffed from the first entry.
	Ignored []string
}

// Classify detects the source kind of path from its extension.
func Classify(path string) (types.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return types.Document{Path: path, Kind: types.SourceDocument}, nil
	}
	kind, err := archive.KindOf(path)
	if err != nil {
		return types.Document{}, err
	}
	return types.Document{Path: path, Kind: types.SourcePageArchive, Container: kind}, nil
}

// Resolve validates cfg and enumerates the documents to convert. All
// errors it returns are fatal to the invocation and occur before any
// conversion work.
func Resolve(cfg types.ConversionConfig) (Job, error) {
	switch cfg.Format {
	case types.TargetCBZ, "":
	case types.TargetCBR:
		return Job{}, fmt.Errorf("%w: %s output is not yet supported", types.ErrUnsupportedTarget, cfg.Format)
	default:
		return Job{}, fmt.Errorf("%w: %q", types.ErrUnknownTarget, cfg.Format)
	}

	if cfg.InputPath == "" {
		return Job{}, fmt.Errorf("%w: no input path given", types.ErrInputNotFound)
	}
	info, err := os.Stat(cfg.InputPath)
	if err != nil {
		return Job{}, fmt.Errorf("%w: %s", types.ErrInputNotFound, cfg.InputPath)
	}

	if !info.IsDir() {
		doc, err := Classify(cfg.InputPath)
		if err != nil {
			return Job{}, err
		}
		out := cfg.OutputPath
		if out == "" {
			out = filepath.Dir(cfg.InputPath)
		}
		return Job{Mode: ModeSingle, Kind: doc.Kind, OutputDir: out, Documents: []types.Document{doc}}, nil
	}

	return resolveBatch(cfg)
}

// resolveBatch sniffs the source kind from the first file in name order
// and assumes the directory is homogeneous. Files that classify to a
// different kind are listed in Ignored rather than converted.
func resolveBatch(cfg types.ConversionConfig) (Job, error) {
	entries, err := os.ReadDir(cfg.InputPath)
	if err != nil {
		return Job{}, fmt.Errorf("reading input directory %s: %w", cfg.InputPath, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(cfg.InputPath, e.Name()))
	}
	if len(files) == 0 {
		return Job{}, fmt.Errorf("%w: %s", types.ErrInputEmpty, cfg.InputPath)
	}

	first, err := Classify(files[0])
	if err != nil {
		return Job{}, fmt.Errorf("sniffing %s: %w", cfg.InputPath, err)
	}

	j := Job{Mode: ModeBatch, Kind: first.Kind, OutputDir: cfg.OutputPath}
	if j.OutputDir == "" {
		j.OutputDir = filepath.Clean(cfg.InputPath) + BatchSuffix
	}
	for _, f := range files {
		doc, err := Classify(f)
		if err != nil || doc.Kind != first.Kind {
			j.Ignored = append(j.Ignored, f)
			continue
		}
		j.Documents = append(j.Documents, doc)
	}
	return j, nil
}

// Run creates the output directory and converts every document in j.
func Run(ctx context.Context, j Job, p *convert.Pipeline, skipExisting bool, w io.Writer) (convert.BatchResult, error) {
	if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
		return convert.BatchResult{}, fmt.Errorf("creating output directory %s: %w", j.OutputDir, err)
	}
	for _, f := range j.Ignored {
		fmt.Fprintf(w, "ignored: %s (not a %s)\n", filepath.Base(f), j.Kind)
	}
	opts := convert.BatchOptions{OutputDir: j.OutputDir, SkipExisting: skipExisting}
	return p.ConvertBatch(ctx, j.Documents, opts, w), nil
}
