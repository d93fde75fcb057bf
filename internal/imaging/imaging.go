// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded cover backgrounds. Images are decoded
// (PNG, JPEG, GIF, WebP, BMP), guarded against decompression bombs, scaled
// down to fit the print canvas and re-encoded as PNG or JPEG, the formats
// the PDF exporter can embed.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps the decoded size of an upload (about 40 megapixels).
const MaxPixels = 40_000_000

// JPEGQuality is used when re-encoding photographic sources.
const JPEGQuality = 88

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image dimensions too large")
)

// Processed is a normalised image ready for storage.
type Processed struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Normalize decodes data and, if it is larger than maxW x maxH, scales it
// down preserving the aspect ratio. JPEG sources stay JPEG; everything else
// is encoded as PNG so transparency survives.
func Normalize(data []byte, maxW, maxH int) (*Processed, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: %w: %v", ErrUnsupportedFormat, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("imaging: %w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", format, err)
	}

	img := Fit(src, maxW, maxH)
	b := img.Bounds()

	var buf bytes.Buffer
	out := &Processed{Width: b.Dx(), Height: b.Dy()}
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("imaging: encode jpeg: %w", err)
		}
		out.ContentType, out.Ext = "image/jpeg", "jpg"
	} else {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("imaging: encode png: %w", err)
		}
		out.ContentType, out.Ext = "image/png", "png"
	}
	out.Data = buf.Bytes()
	return out, nil
}

// Fit scales img down to fit within maxW x maxH. Images that already fit,
// or a non-positive bound, are returned unchanged.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return img
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// EncodeForPDF returns data in a format the PDF writer accepts (PNG or
// JPEG). GIF, WebP and BMP images are converted to PNG. The returned type is
// "PNG" or "JPG".
func EncodeForPDF(data []byte) ([]byte, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: %w: %v", ErrUnsupportedFormat, err)
	}
	switch format {
	case "jpeg":
		return data, "JPG", nil
	case "png":
		return data, "PNG", nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode %s: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, "", fmt.Errorf("imaging: encode png: %w", err)
	}
	return buf.Bytes(), "PNG", nil
}
