// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package job

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2comic/internal/convert"
	"github.com/pdiddy/pdf2comic/pkg/types"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path      string
		kind      types.SourceKind
		container types.ContainerKind
		wantErr   bool
	}{
		{path: "a.pdf", kind: types.SourceDocument},
		{path: "A.PDF", kind: types.SourceDocument},
		{path: "b.cbz", kind: types.SourcePageArchive, container: types.ContainerZip},
		{path: "b.zip", kind: types.SourcePageArchive, container: types.ContainerZip},
		{path: "c.cbr", kind: types.SourcePageArchive, container: types.ContainerRar},
		{path: "d.epub", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc, err := Classify(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, doc.Kind)
			assert.Equal(t, tt.container, doc.Container)
		})
	}
}

func TestResolve_Validation(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	pdf := filepath.Join(dir, "a.pdf")
	touch(t, pdf)
	onlyHidden := filepath.Join(dir, "hidden")
	touch(t, filepath.Join(onlyHidden, ".DS_Store"))
	unknown := filepath.Join(dir, "unknown")
	touch(t, filepath.Join(unknown, "a.docx"))

	tests := []struct {
		name string
		cfg  types.ConversionConfig
		want error
	}{
		{"cbr target", types.ConversionConfig{InputPath: pdf, Format: types.TargetCBR}, types.ErrUnsupportedTarget},
		{"cbr checked before input", types.ConversionConfig{InputPath: filepath.Join(dir, "nope"), Format: types.TargetCBR}, types.ErrUnsupportedTarget},
		{"unknown target", types.ConversionConfig{InputPath: pdf, Format: "cb7"}, types.ErrUnknownTarget},
		{"missing input", types.ConversionConfig{InputPath: filepath.Join(dir, "nope.pdf")}, types.ErrInputNotFound},
		{"no input", types.ConversionConfig{}, types.ErrInputNotFound},
		{"empty directory", types.ConversionConfig{InputPath: empty}, types.ErrInputEmpty},
		{"only dotfiles", types.ConversionConfig{InputPath: onlyHidden}, types.ErrInputEmpty},
		{"unrecognized first entry", types.ConversionConfig{InputPath: unknown}, types.ErrUnsupportedFormat},
		{"unrecognized single file", types.ConversionConfig{InputPath: filepath.Join(unknown, "a.docx")}, types.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolve_Single(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "My Comic.pdf")
	touch(t, pdf)

	j, err := Resolve(types.ConversionConfig{InputPath: pdf})
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, j.Mode)
	assert.Equal(t, dir, j.OutputDir)
	require.Len(t, j.Documents, 1)
	assert.Equal(t, types.SourceDocument, j.Documents[0].Kind)

	j, err = Resolve(types.ConversionConfig{InputPath: pdf, OutputPath: "/elsewhere"})
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", j.OutputDir)
}

func TestResolve_Batch(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	touch(t, filepath.Join(in, "B.pdf"))
	touch(t, filepath.Join(in, "A.pdf"))
	touch(t, filepath.Join(in, "c.cbz"))
	touch(t, filepath.Join(in, "readme.txt"))
	touch(t, filepath.Join(in, "sub", "D.pdf"))

	j, err := Resolve(types.ConversionConfig{InputPath: in + string(filepath.Separator)})
	require.NoError(t, err)

	assert.Equal(t, ModeBatch, j.Mode)
	assert.Equal(t, types.SourceDocument, j.Kind)
	assert.Equal(t, filepath.Join(root, "in_converted"), j.OutputDir)

	var names []string
	for _, d := range j.Documents {
		names = append(names, filepath.Base(d.Path))
	}
	assert.Equal(t, []string{"A.pdf", "B.pdf"}, names)
	assert.Equal(t, []string{filepath.Join(in, "c.cbz"), filepath.Join(in, "readme.txt")}, j.Ignored)
}

func TestResolve_BatchArchives(t *testing.T) {
	in := t.TempDir()
	touch(t, filepath.Join(in, "a.cbr"))
	touch(t, filepath.Join(in, "b.cbz"))

	j, err := Resolve(types.ConversionConfig{InputPath: in, OutputPath: filepath.Join(in, "out")})
	require.NoError(t, err)
	assert.Equal(t, types.SourcePageArchive, j.Kind)
	require.Len(t, j.Documents, 2)
	assert.Equal(t, types.ContainerRar, j.Documents[0].Container)
	assert.Equal(t, types.ContainerZip, j.Documents[1].Container)
	assert.Empty(t, j.Ignored)
}

type pagesRasterizer map[string]int

func (p pagesRasterizer) PageCount(_ context.Context, path string) (int, error) {
	return p[path], nil
}

func (p pagesRasterizer) RenderPage(context.Context, string, int) (image.Image, error) {
	return image.NewNRGBA(image.Rect(0, 0, 4, 4)), nil
}

func TestRun_BatchScenario(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	a, b := filepath.Join(in, "A.pdf"), filepath.Join(in, "B.pdf")
	touch(t, a)
	touch(t, b)

	j, err := Resolve(types.ConversionConfig{InputPath: in})
	require.NoError(t, err)

	p := convert.NewPipeline(pagesRasterizer{a: 3, b: 1}, types.ConversionConfig{}, nil)
	var log bytes.Buffer
	result, err := Run(context.Background(), j, p, false, &log)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Converted)

	outDir := filepath.Join(root, "in_converted")
	assert.Equal(t, []string{"A_-_000.webp", "A_-_001.webp", "A_-_002.webp"}, zipNames(t, filepath.Join(outDir, "A.cbz")))
	assert.Equal(t, []string{"B_-_000.webp"}, zipNames(t, filepath.Join(outDir, "B.cbz")))
}

func TestRun_ReportsIgnored(t *testing.T) {
	in := t.TempDir()
	a := filepath.Join(in, "A.pdf")
	touch(t, a)
	touch(t, filepath.Join(in, "z.epub"))

	j, err := Resolve(types.ConversionConfig{InputPath: in, OutputPath: filepath.Join(in, "out")})
	require.NoError(t, err)

	var log bytes.Buffer
	p := convert.NewPipeline(pagesRasterizer{a: 1}, types.ConversionConfig{}, nil)
	_, err = Run(context.Background(), j, p, false, &log)
	require.NoError(t, err)
	assert.Contains(t, log.String(), "ignored: z.epub (not a document)")
}

func writeBook(t *testing.T, path string) {
	t.Helper()
	var page bytes.Buffer
	require.NoError(t, png.Encode(&page, image.NewNRGBA(image.Rect(0, 0, 4, 4))))

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range map[string][]byte{"p1.png": page.Bytes(), "notes.txt": []byte("keep me")} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestRun_SingleArchiveKeepsSource(t *testing.T) {
	for _, skip := range []bool{false, true} {
		dir := t.TempDir()
		src := filepath.Join(dir, "Book.cbz")
		writeBook(t, src)
		before, err := os.ReadFile(src)
		require.NoError(t, err)

		j, err := Resolve(types.ConversionConfig{InputPath: src})
		require.NoError(t, err)
		require.Equal(t, dir, j.OutputDir)

		var log bytes.Buffer
		p := convert.NewPipeline(nil, types.ConversionConfig{}, nil)
		result, err := Run(context.Background(), j, p, skip, &log)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed, "skip-existing=%v", skip)
		assert.ErrorIs(t, result.Outcomes[0].Err, types.ErrOverwriteSource)
		assert.Contains(t, log.String(), "failed:  Book")

		after, err := os.ReadFile(src)
		require.NoError(t, err)
		assert.Equal(t, before, after, "source archive must be left untouched")
	}
}

func TestRun_SingleArchiveOtherOutputDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Book.cbz")
	writeBook(t, src)
	out := filepath.Join(dir, "out")

	j, err := Resolve(types.ConversionConfig{InputPath: src, OutputPath: out})
	require.NoError(t, err)

	var log bytes.Buffer
	p := convert.NewPipeline(nil, types.ConversionConfig{}, nil)
	result, err := Run(context.Background(), j, p, false, &log)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, []string{"Book_-_001.webp"}, zipNames(t, filepath.Join(out, "Book.cbz")))
	assert.ElementsMatch(t, []string{"p1.png", "notes.txt"}, zipNames(t, src))
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}
