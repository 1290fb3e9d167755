package main

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

type textureKey struct {
	index      int
	generation uint64
}

// TextureCache keeps GPU copies of recently shown images. A slot upgrade
// bumps its generation, so stale textures simply age out and are freed.
type TextureCache struct {
	cache   *lru.Cache[textureKey, *ebiten.Image]
	create  func(*image.RGBA) *ebiten.Image
	release func(*ebiten.Image)
}

func NewTextureCache(size int) *TextureCache {
	return newTextureCache(size, func(img *image.RGBA) *ebiten.Image {
		return ebiten.NewImageFromImage(img)
	}, func(img *ebiten.Image) {
		img.Deallocate()
	})
}

func newTextureCache(size int, create func(*image.RGBA) *ebiten.Image, release func(*ebiten.Image)) *TextureCache {
	tc := &TextureCache{create: create, release: release}
	cache, err := lru.NewWithEvict(max(size, 1), func(key textureKey, img *ebiten.Image) {
		debugLog("Releasing texture for [%d] gen %d", key.index+1, key.generation)
		tc.release(img)
	})
	if err != nil {
		panic(err) // only fails for size <= 0
	}
	tc.cache = cache
	return tc
}

// Texture returns the GPU image for a frame, uploading it on first use.
func (tc *TextureCache) Texture(frame DisplayFrame) *ebiten.Image {
	if frame.Data == nil || frame.Data.Pixels == nil {
		return nil
	}
	key := textureKey{index: frame.Index, generation: frame.Generation}
	if img, ok := tc.cache.Get(key); ok {
		return img
	}
	img := tc.create(frame.Data.Pixels)
	tc.cache.Add(key, img)
	return img
}

func (tc *TextureCache) Len() int {
	return tc.cache.Len()
}

// Purge frees every cached texture.
func (tc *TextureCache) Purge() {
	tc.cache.Purge()
}
