package main

import (
	"bufio"
	"bytes"
	"context"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"go.trai.ch/zerr"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageData is a decoded image held in CPU memory at a given tier.
type ImageData struct {
	Pixels  *image.RGBA
	Width   int
	Height  int
	Quality QualityTier
}

// MemorySize returns the number of pixel bytes retained by the image.
func (d *ImageData) MemorySize() int {
	if d == nil || d.Pixels == nil {
		return 0
	}
	return len(d.Pixels.Pix)
}

// readImageBytes loads the raw bytes of a file or archive entry.
func readImageBytes(p ImagePath) ([]byte, error) {
	if p.ArchivePath != "" {
		return readArchiveEntry(p.ArchivePath, p.EntryPath)
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", p.Path)
	}
	return data, nil
}

// Decode reads and decodes an image, then downsamples it to the tier.
func Decode(ctx context.Context, p ImagePath, tier QualityTier) (*ImageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := readImageBytes(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return decodeBytes(data, p.Path, tier)
}

func decodeBytes(data []byte, name string, tier QualityTier) (*ImageData, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrDecodeFailed.Error()), "path", name)
	}

	bounds := img.Bounds()
	w, h := tier.TargetDimensions(bounds.Dx(), bounds.Dy())
	pixels := resizeToRGBA(img, w, h, tier)

	debugLog("Decoded %s (%s) %dx%d -> %dx%d [%s]", name, format, bounds.Dx(), bounds.Dy(), w, h, tier)
	return &ImageData{Pixels: pixels, Width: w, Height: h, Quality: tier}, nil
}

// Downscale derives a lower tier from an already decoded image.
func (d *ImageData) Downscale(tier QualityTier) *ImageData {
	w, h := tier.TargetDimensions(d.Width, d.Height)
	return &ImageData{Pixels: resizeToRGBA(d.Pixels, w, h, tier), Width: w, Height: h, Quality: tier}
}

// resizeToRGBA converts img to RGBA at w x h. Thumbnails favour speed.
func resizeToRGBA(img image.Image, w, h int, tier QualityTier) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	if w == bounds.Dx() && h == bounds.Dy() {
		if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
			return rgba
		}
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}

	var scaler xdraw.Scaler = xdraw.BiLinear
	if tier == QualityThumbnail {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// DecodeConfig returns the original dimensions of an image. Plain files are
// read only as far as the header; archive entries are extracted first.
func DecodeConfig(p ImagePath) (int, int, error) {
	var r io.Reader
	if p.ArchivePath != "" {
		data, err := readArchiveEntry(p.ArchivePath, p.EntryPath)
		if err != nil {
			return 0, 0, err
		}
		r = bytes.NewReader(data)
	} else {
		f, err := os.Open(p.Path)
		if err != nil {
			return 0, 0, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", p.Path)
		}
		defer f.Close()
		r = bufio.NewReader(f)
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, zerr.With(zerr.Wrap(err, ErrDecodeFailed.Error()), "path", p.Path)
	}
	return cfg.Width, cfg.Height, nil
}
