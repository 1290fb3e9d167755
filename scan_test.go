package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
)

func TestIsSupportedExt(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"PNG file", "test.png", true},
		{"JPG file", "test.jpg", true},
		{"JPEG file", "test.jpeg", true},
		{"WebP file", "test.webp", true},
		{"BMP file", "test.bmp", true},
		{"GIF file", "test.gif", true},
		{"PNG uppercase", "test.PNG", true},
		{"JPG uppercase", "test.JPG", true},
		{"Text file", "test.txt", false},
		{"No extension", "test", false},
		{"Empty string", "", false},
		{"Multiple dots", "test.backup.jpg", true},
		{"Path with directory", "/path/to/test.png", true},
		{"Archive", "test.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSupportedExt(tt.path))
		})
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJPEG, formatOf("a.JPEG"))
	assert.Equal(t, FormatPNG, formatOf("a.png"))
	assert.Equal(t, FormatGIF, formatOf("a.gif"))
	assert.Equal(t, FormatBMP, formatOf("a.bmp"))
	assert.Equal(t, FormatWebP, formatOf("a.webp"))
	assert.Equal(t, FormatUnknown, formatOf("a.tiff"))
}

func TestIsArchiveExt(t *testing.T) {
	assert.True(t, isArchiveExt("a.zip"))
	assert.True(t, isArchiveExt("a.RAR"))
	assert.True(t, isArchiveExt("a.7z"))
	assert.False(t, isArchiveExt("a.tar"))
	assert.False(t, isArchiveExt("a.png"))
}

func names(paths []ImagePath) []string {
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		result = append(result, p.Name())
	}
	return result
}

func TestCollectImagesDirectory(t *testing.T) {
	dir := imageDir(t, "img10.png", "img2.png", "img1.jpg", ".hidden.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeTestImage(t, filepath.Join(dir, "sub", "nested.png"), 2, 2)

	result, err := collectImages(dir, SortNatural)
	require.NoError(t, err)

	assert.Equal(t, []string{"img1.jpg", "img2.png", "img10.png"}, names(result.Paths))
	assert.Equal(t, 0, result.Start)
	assert.Equal(t, dir, result.Source)
	for _, p := range result.Paths {
		assert.Empty(t, p.ArchivePath)
	}
}

func TestCollectImagesSortMethod(t *testing.T) {
	dir := imageDir(t, "img10.png", "img2.png", "img1.png")

	result, err := collectImages(dir, SortSimple)
	require.NoError(t, err)
	assert.Equal(t, []string{"img1.png", "img10.png", "img2.png"}, names(result.Paths))
}

func TestCollectImagesCurrentDirectory(t *testing.T) {
	dir := imageDir(t, "a.png", "b.png")
	t.Chdir(dir)

	result, err := collectImages("", SortNatural)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, names(result.Paths))
}

func TestCollectImagesSingleFile(t *testing.T) {
	dir := imageDir(t, "a.png", "b.png", "c.png")

	result, err := collectImages(filepath.Join(dir, "b.png"), SortNatural)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, names(result.Paths))
	assert.Equal(t, 1, result.Start)
}

func TestCollectImagesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := collectImages(filepath.Join(dir, "missing"), SortNatural)
	assert.ErrorContains(t, err, "path not found")

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	_, err = collectImages(txt, SortNatural)
	assert.ErrorContains(t, err, "path is not a directory, archive or supported image")

	_, err = collectImages(dir, SortNatural)
	require.ErrorContains(t, err, "no supported images found")
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, supportedFormatList, zErr.Metadata()["formats"])
}

func TestImagePathName(t *testing.T) {
	assert.Equal(t, "a.png", ImagePath{Path: "/x/y/a.png"}.Name())
	assert.Equal(t, "p1.jpg", ImagePath{
		Path:        "/x/book.zip:ch1/p1.jpg",
		ArchivePath: "/x/book.zip",
		EntryPath:   "ch1/p1.jpg",
	}.Name())
}
