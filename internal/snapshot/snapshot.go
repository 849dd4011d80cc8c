// Package snapshot saves, encodes and previews desktop frames.
package snapshot

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Save writes img to path. The format follows the file extension.
func Save(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads an encoded frame.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return img, nil
}

// Fit scales img down to fit within maxW x maxH preserving the aspect
// ratio. Images that already fit are returned unchanged.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || maxH <= 0 || w <= 0 || h <= 0 || (w <= maxW && h <= maxH) {
		return img
	}
	dw, dh := maxW, h*maxW/w
	if dh > maxH {
		dw, dh = w*maxH/h, maxH
	}
	dst := image.NewNRGBA(image.Rect(0, 0, max(dw, 1), max(dh, 1)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
