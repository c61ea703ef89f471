// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codec decodes source pages into images and encodes processed
// pages into the output page format.
package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/pdf2comic/pkg/types"
)

// PageExt is the extension of every encoded output page.
const PageExt = "webp"

// pageExtensions lists entry extensions treated as pages when reading a
// source archive (lowercase, with leading dot).
var pageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsPageName reports whether an archive entry name has a raster image
// extension.
func IsPageName(name string) bool {
	return pageExtensions[strings.ToLower(filepath.Ext(name))]
}

// DecodeEntry decodes one image payload read from a source archive.
func DecodeEntry(name string, data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrDecode, name, err)
	}
	return img, nil
}

// Encode serializes img as a lossless WebP.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncode, err)
	}
	return buf.Bytes(), nil
}
