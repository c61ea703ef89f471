// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns one source document into a page-image archive.
// Pages flow one at a time through decode, optional trim, and encode, and
// are appended to an in-memory archive that is flushed once at the end.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/pdf2comic/internal/archive"
	"github.com/pdiddy/pdf2comic/internal/codec"
	"github.com/pdiddy/pdf2comic/internal/trim"
	"github.com/pdiddy/pdf2comic/pkg/types"
)

// PageName returns the archive entry name for page index of a document
// whose page base is base: <base>_-_<index %03d>.webp.
func PageName(base string, index int) string {
	return fmt.Sprintf("%s_-_%03d.%s", base, index, codec.PageExt)
}

// OutputPath returns where the archive for doc is written inside outDir.
func OutputPath(doc types.Document, outDir string) string {
	return filepath.Join(outDir, doc.BaseName()+"."+archive.OutputExt)
}

// checkOutput rejects an output path that resolves to the source file,
// as happens for a .cbz converted into its own directory.
func checkOutput(doc types.Document, out string) error {
	src, err := filepath.Abs(doc.Path)
	if err != nil {
		src = filepath.Clean(doc.Path)
	}
	dst, err := filepath.Abs(out)
	if err != nil {
		dst = filepath.Clean(out)
	}
	same := src == dst
	if !same {
		si, serr := os.Stat(src)
		di, derr := os.Stat(dst)
		same = serr == nil && derr == nil && os.SameFile(si, di)
	}
	if same {
		return fmt.Errorf("%w: %s (choose another output directory)", types.ErrOverwriteSource, doc.Path)
	}
	return nil
}

// Pipeline converts documents. It is safe to reuse across documents; each
// call to ConvertDocument owns its own output archive.
type Pipeline struct {
	raster  codec.Rasterizer
	trim    bool
	workers int
	log     *zap.Logger
}

// NewPipeline creates a pipeline that rasterizes documents with r and
// applies the trim and worker settings from cfg.
func NewPipeline(r codec.Rasterizer, cfg types.ConversionConfig, log *zap.Logger) *Pipeline {
	cfg = cfg.WithDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		raster:  r,
		trim:    cfg.Trim,
		workers: cfg.Workers,
		log:     log,
	}
}

// Result describes a successfully written archive.
type Result struct {
	OutputPath string
	Pages      int
	Metadata   bool
}

// entryJob produces the bytes of one output entry.
type entryJob struct {
	name string
	page bool
	load func(ctx context.Context) ([]byte, error)
}

// ConvertDocument converts doc and writes <outDir>/<base>.cbz. Any page
// failure aborts the document before anything is written, and a document
// whose output path is its own source path is refused up front.
func (p *Pipeline) ConvertDocument(ctx context.Context, doc types.Document, outDir string) (Result, error) {
	if err := checkOutput(doc, OutputPath(doc, outDir)); err != nil {
		return Result{}, err
	}

	var (
		jobs    []entryJob
		cleanup func()
		err     error
	)
	switch doc.Kind {
	case types.SourceDocument:
		jobs, err = p.documentJobs(ctx, doc)
	case types.SourcePageArchive:
		jobs, cleanup, err = p.archiveJobs(doc)
	default:
		err = fmt.Errorf("%w: %s has unknown source kind", types.ErrUnsupportedFormat, doc.Path)
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{OutputPath: OutputPath(doc, outDir)}
	for _, j := range jobs {
		if j.page {
			res.Pages++
		} else {
			res.Metadata = true
		}
	}
	if res.Pages == 0 {
		return Result{}, fmt.Errorf("%w: %s", types.ErrEmptyDocument, doc.Path)
	}

	w := archive.NewWriter()
	err = runOrdered(ctx, len(jobs), p.workers,
		func(ctx context.Context, i int) ([]byte, error) {
			return jobs[i].load(ctx)
		},
		func(i int, data []byte) error {
			p.log.Debug("entry written",
				zap.String("document", doc.BaseName()),
				zap.String("entry", jobs[i].name),
				zap.Int("bytes", len(data)))
			return w.WriteEntry(jobs[i].name, data)
		})
	if err != nil {
		return Result{}, err
	}

	if err := w.Flush(res.OutputPath); err != nil {
		return Result{}, err
	}
	return res, nil
}

// documentJobs plans a rasterized document: one entry per page, indexed
// from 0.
func (p *Pipeline) documentJobs(ctx context.Context, doc types.Document) ([]entryJob, error) {
	n, err := p.raster.PageCount(ctx, doc.Path)
	if err != nil {
		return nil, err
	}
	p.log.Debug("rasterizing document", zap.String("path", doc.Path), zap.Int("pages", n), zap.Bool("trim", p.trim))

	base := doc.PageBase()
	jobs := make([]entryJob, n)
	for i := 0; i < n; i++ {
		index := i
		jobs[i] = entryJob{
			name: PageName(base, index),
			page: true,
			load: func(ctx context.Context) ([]byte, error) {
				img, err := p.raster.RenderPage(ctx, doc.Path, index)
				if err != nil {
					return nil, err
				}
				if p.trim {
					img = trim.Trim(img)
				}
				return codec.Encode(img)
			},
		}
	}
	return jobs, nil
}

// archiveJobs plans a page archive: image entries in sorted name order
// indexed from 1, the metadata entry copied verbatim, everything else
// dropped. Pages from an existing archive are never trimmed.
func (p *Pipeline) archiveJobs(doc types.Document) ([]entryJob, func(), error) {
	r, err := archive.Open(doc.Path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := r.Close(); err != nil {
			p.log.Warn("closing archive", zap.String("path", doc.Path), zap.Error(err))
		}
	}

	base := doc.PageBase()
	var jobs []entryJob
	index := 1
	for _, name := range r.Entries() {
		switch {
		case name == archive.MetadataEntry:
			jobs = append(jobs, entryJob{
				name: name,
				load: func(context.Context) ([]byte, error) {
					return r.ReadEntry(name)
				},
			})
		case codec.IsPageName(name):
			jobs = append(jobs, entryJob{
				name: PageName(base, index),
				page: true,
				load: func(context.Context) ([]byte, error) {
					data, err := r.ReadEntry(name)
					if err != nil {
						return nil, err
					}
					img, err := codec.DecodeEntry(name, data)
					if err != nil {
						return nil, err
					}
					return codec.Encode(img)
				},
			})
			index++
		default:
			p.log.Debug("skipping entry", zap.String("path", doc.Path), zap.String("entry", name))
		}
	}
	return jobs, cleanup, nil
}
