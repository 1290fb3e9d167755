package main

import (
	"bytes"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Global font source shared by every overlay
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// DrawBorder outlines a rectangle with the given line width.
func DrawBorder(screen *ebiten.Image, x, y, w, h, width float64, c color.RGBA) {
	DrawFilledRect(screen, x, y, w, width, c)
	DrawFilledRect(screen, x, y+h-width, w, width, c)
	DrawFilledRect(screen, x, y, width, h, c)
	DrawFilledRect(screen, x+w-width, y, width, h, c)
}

// truncateText shortens s to at most maxChars runes, marking the cut.
func truncateText(s string, maxChars int) string {
	runes := []rune(s)
	if maxChars <= 3 || len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-3]) + "..."
}

// DrawErrorPanel draws a centred error box for an image that failed to decode.
func DrawErrorPanel(screen *ebiten.Image, filename, errorMsg string) {
	sw, sh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	w, h := min(sw-20, 480.0), min(sh-20, 140.0)
	if w <= 0 || h <= 0 {
		return
	}
	x, y := (sw-w)/2, (sh-h)/2

	DrawFilledRect(screen, x, y, w, h, color.RGBA{120, 30, 30, 255}) // Dark red background
	DrawBorder(screen, x, y, w, h, 3, colorWhite)

	// Without a font only the panel is drawn
	if globalFontSource == nil {
		return
	}

	errorFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   18.0,
	}

	maxChars := int(w-20) / 9 // Rough estimate: 9px per character
	DrawText(screen, "ERROR", errorFont, x+10, y+15, colorWhite)
	DrawText(screen, truncateText("File: "+filename, maxChars), errorFont, x+10, y+50, colorWhite)
	DrawText(screen, truncateText("Reason: "+errorMsg, maxChars), errorFont, x+10, y+85, colorWhite)
}
