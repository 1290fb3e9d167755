package main

import (
	"image"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
)

// countingTextures stands in for GPU uploads.
type countingTextures struct {
	created  int
	released []*ebiten.Image
}

func (c *countingTextures) cache(size int) *TextureCache {
	return newTextureCache(size, func(*image.RGBA) *ebiten.Image {
		c.created++
		return new(ebiten.Image)
	}, func(img *ebiten.Image) {
		c.released = append(c.released, img)
	})
}

func TestTextureCacheReusesUploads(t *testing.T) {
	counter := &countingTextures{}
	tc := counter.cache(4)
	frame := DisplayFrame{Index: 3, Generation: 1, Data: makeImageData(2, 2, QualityFull)}

	first := tc.Texture(frame)
	second := tc.Texture(frame)

	assert.Same(t, first, second)
	assert.Equal(t, 1, counter.created)
	assert.Equal(t, 1, tc.Len())
}

func TestTextureCacheKeysOnGeneration(t *testing.T) {
	counter := &countingTextures{}
	tc := counter.cache(4)
	frame := DisplayFrame{Index: 0, Generation: 1, Data: makeImageData(2, 2, QualityPreview)}

	preview := tc.Texture(frame)
	frame.Generation = 2
	frame.Data = makeImageData(4, 4, QualityFull)
	full := tc.Texture(frame)

	assert.NotSame(t, preview, full, "upgraded slot gets a fresh texture")
	assert.Equal(t, 2, counter.created)
}

func TestTextureCacheEvictsAndReleases(t *testing.T) {
	counter := &countingTextures{}
	tc := counter.cache(2)

	var textures []*ebiten.Image
	for i := range 3 {
		textures = append(textures, tc.Texture(DisplayFrame{Index: i, Data: makeImageData(1, 1, QualityFull)}))
	}

	assert.Equal(t, 2, tc.Len())
	assert.Equal(t, []*ebiten.Image{textures[0]}, counter.released, "least recently used goes first")

	tc.Purge()
	assert.Zero(t, tc.Len())
	assert.Len(t, counter.released, 3)
}

func TestTextureCacheWithoutData(t *testing.T) {
	counter := &countingTextures{}
	tc := counter.cache(0)

	assert.Nil(t, tc.Texture(DisplayFrame{Index: 1}))
	assert.Nil(t, tc.Texture(DisplayFrame{Index: 1, Data: &ImageData{}}))
	assert.Zero(t, counter.created)
}
