package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityTierOrdering(t *testing.T) {
	assert.Less(t, QualityThumbnail, QualityPreview)
	assert.Less(t, QualityPreview, QualityFull)
	assert.Equal(t, []QualityTier{QualityThumbnail, QualityPreview, QualityFull}, AllQualityTiers)
}

func TestQualityTierString(t *testing.T) {
	assert.Equal(t, "thumbnail", QualityThumbnail.String())
	assert.Equal(t, "preview", QualityPreview.String())
	assert.Equal(t, "full", QualityFull.String())
	assert.Equal(t, "unknown", QualityTier(42).String())
}

func TestTargetDimensions(t *testing.T) {
	tests := []struct {
		name         string
		tier         QualityTier
		w, h         int
		wantW, wantH int
	}{
		{"thumbnail landscape", QualityThumbnail, 4000, 3000, 256, 192},
		{"thumbnail portrait", QualityThumbnail, 3000, 4000, 192, 256},
		{"preview landscape", QualityPreview, 4000, 3000, 1024, 768},
		{"preview square", QualityPreview, 2048, 2048, 1024, 1024},
		{"full keeps original", QualityFull, 4000, 3000, 4000, 3000},
		{"small image not upscaled", QualityThumbnail, 100, 50, 100, 50},
		{"exactly at limit", QualityThumbnail, 256, 100, 256, 100},
		{"extreme aspect keeps 1px", QualityThumbnail, 10000, 2, 256, 1},
		{"rounds to nearest", QualityThumbnail, 1000, 333, 256, 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.tier.TargetDimensions(tt.w, tt.h)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestEstimateMemory(t *testing.T) {
	assert.Equal(t, 256*192*4, QualityThumbnail.EstimateMemory(4000, 3000))
	assert.Equal(t, 1024*768*4, QualityPreview.EstimateMemory(4000, 3000))
	assert.Equal(t, 4000*3000*4, QualityFull.EstimateMemory(4000, 3000))
}
