// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/pdiddy/pdf2comic/pkg/types"
)

// Outcome records what happened to one document in a batch.
type Outcome struct {
	Document   types.Document
	Status     types.ConversionStatus
	OutputPath string
	Pages      int
	Err        error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

func (r *BatchResult) add(o Outcome) {
	switch o.Status {
	case types.ConversionDone:
		r.Converted++
	case types.ConversionSkipped:
		r.Skipped++
	case types.ConversionFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// BatchOptions controls ConvertBatch.
type BatchOptions struct {
	// OutputDir receives one archive per document.
	OutputDir string

	// SkipExisting skips documents whose archive already exists.
	SkipExisting bool
}

// ConvertOne converts a single document, printing its status line to w.
func (p *Pipeline) ConvertOne(ctx context.Context, doc types.Document, opts BatchOptions, w io.Writer) Outcome {
	name := doc.BaseName()
	out := Outcome{Document: doc, OutputPath: OutputPath(doc, opts.OutputDir)}

	if err := checkOutput(doc, out.OutputPath); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		out.Status = types.ConversionFailed
		out.Err = err
		return out
	}

	if opts.SkipExisting {
		if _, err := os.Stat(out.OutputPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			out.Status = types.ConversionSkipped
			return out
		}
	}

	res, err := p.ConvertDocument(ctx, doc, opts.OutputDir)
	if err != nil {
		p.log.Error("conversion failed", zap.String("path", doc.Path), zap.Error(err))
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		out.Status = types.ConversionFailed
		out.Err = err
		return out
	}

	fmt.Fprintf(w, "converted: %s (%d pages)\n", name, res.Pages)
	out.Status = types.ConversionDone
	out.Pages = res.Pages
	return out
}

// ConvertBatch converts docs one after another, printing per-document
// status to w and returning a summary. A failed document never stops the
// batch. Cancelling ctx stops before the next document.
func (p *Pipeline) ConvertBatch(ctx context.Context, docs []types.Document, opts BatchOptions, w io.Writer) BatchResult {
	var result BatchResult
	for _, doc := range docs {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "interrupted: %d document(s) not processed\n", len(docs)-result.Total())
			break
		}
		result.add(p.ConvertOne(ctx, doc, opts, w))
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
