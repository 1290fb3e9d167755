package main

import "math"

// QualityTier is the resolution class an image is decoded at.
// Tiers are ordered from lowest to highest quality.
type QualityTier int

const (
	QualityThumbnail QualityTier = iota
	QualityPreview
	QualityFull
)

const (
	thumbnailMaxDimension = 256
	previewMaxDimension   = 1024
)

// AllQualityTiers lists tiers from lowest to highest.
var AllQualityTiers = []QualityTier{QualityThumbnail, QualityPreview, QualityFull}

func (q QualityTier) String() string {
	switch q {
	case QualityThumbnail:
		return "thumbnail"
	case QualityPreview:
		return "preview"
	case QualityFull:
		return "full"
	default:
		return "unknown"
	}
}

// MaxDimension returns the longest edge allowed for the tier, or 0 when unlimited.
func (q QualityTier) MaxDimension() int {
	switch q {
	case QualityThumbnail:
		return thumbnailMaxDimension
	case QualityPreview:
		return previewMaxDimension
	default:
		return 0
	}
}

// TargetDimensions scales width x height down to fit the tier while keeping
// the aspect ratio. Images already small enough are never upscaled.
func (q QualityTier) TargetDimensions(width, height int) (int, int) {
	maxDim := q.MaxDimension()
	if maxDim == 0 {
		return width, height
	}

	longest := max(width, height)
	if longest <= maxDim {
		return width, height
	}

	scale := float64(maxDim) / float64(longest)
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}

// EstimateMemory returns the RGBA byte size of an image decoded at this tier.
func (q QualityTier) EstimateMemory(width, height int) int {
	w, h := q.TargetDimensions(width, height)
	return w * h * 4
}
