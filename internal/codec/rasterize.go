// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"strings"

	"rsc.io/pdf"

	"github.com/pdiddy/pdf2comic/internal/container"
	"github.com/pdiddy/pdf2comic/pkg/types"
)

// Poppler utilities: PopplerBin renders pages, InfoBin reports the page
// count of documents rsc.io/pdf cannot parse.
const (
	PopplerBin = "pdftoppm"
	InfoBin    = "pdfinfo"
)

// Rasterizer renders the pages of a paginated document one at a time.
type Rasterizer interface {
	// PageCount returns the number of pages in the document at path.
	PageCount(ctx context.Context, path string) (int, error)

	// RenderPage renders the zero-based page index of the document.
	RenderPage(ctx context.Context, path string, index int) (image.Image, error)
}

// PopplerRasterizer counts pages with rsc.io/pdf and renders them with
// pdftoppm, which reads the PDF on stdin and writes one PNG to stdout.
type PopplerRasterizer struct {
	tool container.Tool
	info container.Tool
	dpi  int
}

// NewPopplerRasterizer creates a rasterizer that renders at dpi through tool.
func NewPopplerRasterizer(tool container.Tool, dpi int) *PopplerRasterizer {
	if dpi <= 0 {
		dpi = types.DefaultDPI
	}
	return &PopplerRasterizer{tool: tool, dpi: dpi}
}

// WithInfo sets the pdfinfo tool used to count pages when the document's
// page tree cannot be parsed in-process. It returns p.
func (p *PopplerRasterizer) WithInfo(info container.Tool) *PopplerRasterizer {
	p.info = info
	return p
}

// PageCount parses the document's page tree, falling back to pdfinfo when
// one is configured.
func (p *PopplerRasterizer) PageCount(ctx context.Context, path string) (int, error) {
	n, err := parsePageCount(path)
	if err == nil || p.info == nil {
		return n, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return 0, err
	}

	n, infoErr := p.infoPageCount(ctx, path)
	if infoErr != nil {
		return 0, fmt.Errorf("%w (pdfinfo: %v)", err, infoErr)
	}
	return n, nil
}

func parsePageCount(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: opening %s: %v", types.ErrDecode, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", types.ErrDecode, path, err)
	}

	// rsc.io/pdf panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: parsing %s: %v", types.ErrDecode, path, r)
		}
	}()

	doc, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return 0, fmt.Errorf("%w: parsing %s: %v", types.ErrDecode, path, err)
	}
	return doc.NumPage(), nil
}

// infoPageCount runs pdfinfo with the document on stdin and reads its
// "Pages:" line.
func (p *PopplerRasterizer) infoPageCount(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var out bytes.Buffer
	if err := p.info.Run(ctx, []string{"-"}, f, &out); err != nil {
		return 0, err
	}
	return parseInfoPages(&out)
}

func parseInfoPages(out *bytes.Buffer) (int, error) {
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("bad page count %q", strings.TrimSpace(value))
		}
		return n, nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("no page count in output")
}

// RenderPage runs pdftoppm for a single page and decodes its PNG output.
func (p *PopplerRasterizer) RenderPage(ctx context.Context, path string, index int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrDecode, path, err)
	}
	defer f.Close()

	page := strconv.Itoa(index + 1)
	args := []string{
		"-f", page, "-l", page,
		"-r", strconv.Itoa(p.dpi),
		"-png", "-singlefile",
		"-",
	}

	var out bytes.Buffer
	if err := p.tool.Run(ctx, args, f, &out); err != nil {
		return nil, fmt.Errorf("%w: rendering page %d of %s: %v", types.ErrDecode, index, path, err)
	}

	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d of %s: %v", types.ErrDecode, index, path, err)
	}
	return img, nil
}
