package main

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// testImage returns a w x h gradient so resizes have something to sample.
func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

// writeTestImage encodes a w x h image in the format implied by the extension.
func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	img := testImage(w, h)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, nil)
	case ".gif":
		err = gif.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		_, err = f.WriteString("not an image")
	}
	require.NoError(t, err)
}

// makeImageData builds decoded data of the given size and tier without I/O.
func makeImageData(w, h int, tier QualityTier) *ImageData {
	return &ImageData{
		Pixels:  image.NewRGBA(image.Rect(0, 0, w, h)),
		Width:   w,
		Height:  h,
		Quality: tier,
	}
}

// imageDir creates a directory holding PNGs with the given names.
func imageDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		writeTestImage(t, filepath.Join(dir, name), 8, 6)
	}
	return dir
}
