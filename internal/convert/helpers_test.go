// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// fakeRasterizer serves pages whose width encodes their index, so tests
// can verify ordering after decode.
type fakeRasterizer struct {
	pages   map[string]int // path -> page count
	failAt  map[string]int // path -> page index that fails
	countFn func(path string) error
	border  int // white border around a black page body
}

func (f *fakeRasterizer) PageCount(_ context.Context, path string) (int, error) {
	if f.countFn != nil {
		if err := f.countFn(path); err != nil {
			return 0, err
		}
	}
	n, ok := f.pages[path]
	if !ok {
		return 0, fmt.Errorf("unexpected path %s", path)
	}
	return n, nil
}

func (f *fakeRasterizer) RenderPage(_ context.Context, path string, index int) (image.Image, error) {
	if i, ok := f.failAt[path]; ok && i == index {
		return nil, errors.New("render exploded")
	}
	return bordered(pageWidth(index), 8, f.border), nil
}

func pageWidth(index int) int { return 10 + index }

// bordered returns a black w x h body surrounded by a white border.
func bordered(w, h, border int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w+2*border, h+2*border))
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			c := color.NRGBA{255, 255, 255, 255}
			if x >= border && x < border+w && y >= border && y < border+h {
				c = color.NRGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

type zipEntry struct {
	name string
	data []byte
}

func pngData(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeSourceZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// readArchive returns the entries of a written archive in insertion order.
func readArchive(t *testing.T, path string) []zipEntry {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var out []zipEntry
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out = append(out, zipEntry{name: f.Name, data: data})
	}
	return out
}

func entryNames(entries []zipEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}
