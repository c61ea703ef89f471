// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trim crops the uniform border from rendered page images.
package trim

import (
	"image"

	"github.com/disintegration/imaging"
)

// Threshold is subtracted from the doubled per-channel difference to the
// background colour. Channels whose doubled difference does not exceed it
// count as background, so a pixel is content once any channel differs from
// the corner colour by more than Threshold/2.
const Threshold = 100

// Trim returns img cropped to the bounding box of pixels that differ from
// the top-left pixel. When no such pixel exists img is returned unchanged.
func Trim(img image.Image) image.Image {
	src := imaging.Clone(img)
	box, ok := bounds(src)
	if !ok {
		return img
	}
	return imaging.Crop(src, box)
}

// Bounds reports the content bounding box of img in img's coordinate space.
// The second result is false for a page of a single colour.
func Bounds(img image.Image) (image.Rectangle, bool) {
	box, ok := bounds(imaging.Clone(img))
	if !ok {
		return image.Rectangle{}, false
	}
	return box.Add(img.Bounds().Min), true
}

// bounds scans a zero-origin NRGBA image.
func bounds(src *image.NRGBA) (image.Rectangle, bool) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return image.Rectangle{}, false
	}
	bg := src.Pix[0:4]

	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			if !differs(row[x*4:x*4+4], bg) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func differs(px, bg []byte) bool {
	for c := 0; c < 4; c++ {
		d := int(px[c]) - int(bg[c])
		if d < 0 {
			d = -d
		}
		if 2*d-Threshold > 0 {
			return true
		}
	}
	return false
}
