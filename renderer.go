package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128} // Light semi-transparent
	bgColorMedium = color.RGBA{0, 0, 0, 160} // Medium semi-transparent
)

const (
	helpPadding     = 40.0
	minHelpFontSize = 12.0
	maxWarningLines = 2
)

// Renderer handles all drawing operations
type Renderer struct {
	renderState  RenderState
	textures     *TextureCache
	lastSnapshot *RenderStateSnapshot // Previous frame's state for comparison
}

// NewRenderer creates a new Renderer. InitGraphics must have been called.
func NewRenderer(renderState RenderState, textures *TextureCache) *Renderer {
	return &Renderer{
		renderState: renderState,
		textures:    textures,
	}
}

// Invalidate forces the next Draw to repaint.
func (r *Renderer) Invalidate() {
	r.lastSnapshot = nil
}

// Draw renders the entire screen. The screen is not cleared between frames,
// so nothing is redrawn while the visible state is unchanged.
func (r *Renderer) Draw(screen *ebiten.Image) {
	snapshot := NewRenderStateSnapshot(r.renderState, screen.Bounds().Dx(), screen.Bounds().Dy())
	if snapshot.Equals(r.lastSnapshot) {
		return
	}
	r.lastSnapshot = snapshot

	screen.Fill(r.renderState.GetBackgroundColor())

	frame := r.renderState.CurrentFrame()
	switch {
	case frame.Data != nil:
		if tex := r.textures.Texture(frame); tex != nil {
			r.drawLetterboxed(screen, tex)
		}
	case frame.Err != nil:
		DrawErrorPanel(screen, frame.Name, frame.Err.Error())
	}

	if r.renderState.IsShowingInfo() {
		r.drawInfoDisplay(screen, frame)
	}
	if r.renderState.IsShowingHelp() {
		r.drawHelpOverlay(screen)
	}
}

// fitRect scales an image to fit the window, up or down, and centres it.
func fitRect(imgW, imgH, winW, winH float64) (scale, offsetX, offsetY float64) {
	if imgW <= 0 || imgH <= 0 || winW <= 0 || winH <= 0 {
		return 0, 0, 0
	}
	scale = min(winW/imgW, winH/imgH)
	offsetX = (winW - imgW*scale) / 2
	offsetY = (winH - imgH*scale) / 2
	return scale, offsetX, offsetY
}

func (r *Renderer) drawLetterboxed(screen *ebiten.Image, img *ebiten.Image) {
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	scale, offsetX, offsetY := fitRect(iw, ih, w, h)
	if scale == 0 {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(img, op)
}

// formatBytes renders a byte count in MiB.
func formatBytes(n int64) string {
	return fmt.Sprintf("%.1f MiB", float64(n)/float64(mib))
}

// buildInfoString returns the status line shown by the info display.
func buildInfoString(frame DisplayFrame, used, total int64, stats PreloadStats) string {
	if frame.Total == 0 {
		return "No images"
	}

	tier := "loading"
	switch {
	case frame.Data != nil:
		tier = fmt.Sprintf("%s %dx%d", frame.Data.Quality, frame.Data.Width, frame.Data.Height)
	case frame.Err != nil:
		tier = "error"
	}

	return fmt.Sprintf("[%d/%d] %s  %s  mem %s / %s  decoded %d",
		frame.Index+1, frame.Total, frame.Name, tier, formatBytes(used), formatBytes(total), stats.Decoded)
}

func (r *Renderer) drawInfoDisplay(screen *ebiten.Image, frame DisplayFrame) {
	infoFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   max(r.renderState.GetFontSize()*0.6, minHelpFontSize),
	}

	used, total := r.renderState.GetMemoryStatus()
	infoText := buildInfoString(frame, used, total, r.renderState.GetPreloadStats())

	textWidth, textHeight := text.Measure(infoText, infoFont, 0)

	// Position at bottom left corner
	padding := 10.0
	textX := padding
	textY := float64(screen.Bounds().Dy()) - textHeight - padding

	bgPadding := 5.0
	DrawFilledRect(screen, textX-bgPadding, textY-bgPadding, textWidth+bgPadding*2, textHeight+bgPadding*2, bgColorLight)
	DrawText(screen, infoText, infoFont, textX, textY, colorWhite)
}

// helpLine is one row of the help overlay.
type helpLine struct {
	action      string
	keys        string
	description string
}

func (r *Renderer) helpLines() []helpLine {
	keybindings := r.renderState.GetKeybindings()
	descriptions := GetActionDescriptions()

	var lines []helpLine
	for _, action := range actionNames() {
		keys := keybindings[action]
		if len(keys) == 0 {
			continue
		}
		description := descriptions[action]
		if description == "" {
			description = "No description available"
		}
		lines = append(lines, helpLine{action, strings.Join(keys, ", "), description})
	}
	return lines
}

func (r *Renderer) configWarnings() []string {
	warnings := r.renderState.GetConfigStatus().Warnings
	if len(warnings) > maxWarningLines {
		warnings = warnings[:maxWarningLines]
	}
	short := make([]string, 0, len(warnings))
	for _, w := range warnings {
		short = append(short, "• "+truncateText(w, 50))
	}
	return short
}

func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	fontSize, canFit := r.calculateOptimalFontSize(w-helpPadding*2, h-helpPadding*2)
	if !canFit {
		r.drawMarginTooSmallMessage(screen)
		return
	}

	lines := r.helpLines()
	configStatus := r.renderState.GetConfigStatus()

	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)
	DrawFilledRect(screen, helpPadding, helpPadding, w-helpPadding*2, h-helpPadding*2, bgColorMedium)

	helpFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   fontSize,
	}
	lineHeight := fontSize * 1.5

	titleY := helpPadding + 30
	DrawText(screen, "HELP:", helpFont, helpPadding+20, titleY, colorWhite)
	currentY := titleY + fontSize*2

	// Column widths come from the widest entry
	maxActionWidth, maxKeysWidth := 0.0, 0.0
	for _, line := range lines {
		aw, _ := text.Measure(line.action, helpFont, 0)
		kw, _ := text.Measure(line.keys, helpFont, 0)
		maxActionWidth = max(maxActionWidth, aw)
		maxKeysWidth = max(maxKeysWidth, kw)
	}
	actionColumnX := helpPadding + 40
	arrowColumnX := actionColumnX + maxActionWidth + 20
	keysColumnX := arrowColumnX + 30
	descColumnX := keysColumnX + maxKeysWidth + 20

	for _, line := range lines {
		DrawText(screen, line.action, helpFont, actionColumnX, currentY, colorLightBlue)
		DrawText(screen, "→", helpFont, arrowColumnX, currentY, colorWhite)
		DrawText(screen, line.keys, helpFont, keysColumnX, currentY, colorYellow)
		DrawText(screen, line.description, helpFont, descColumnX, currentY, colorGray)
		currentY += lineHeight
	}

	currentY += lineHeight
	DrawText(screen, "System:", helpFont, helpPadding+20, currentY, colorWhite)
	currentY += lineHeight

	statusColor := colorGreen
	if configStatus.Status == ConfigStatusWarning || configStatus.Status == ConfigStatusError {
		statusColor = colorOrange
	}
	DrawText(screen, "Config Status: "+configStatus.Status, helpFont, helpPadding+40, currentY, statusColor)
	currentY += lineHeight

	for _, warning := range r.configWarnings() {
		DrawText(screen, warning, helpFont, helpPadding+40, currentY, colorLightRed)
		currentY += lineHeight
	}
}

// calculateRequiredDimensions calculates the required width and height for help content at a given font size
func (r *Renderer) calculateRequiredDimensions(fontSize float64) (float64, float64) {
	lines := r.helpLines()
	warnings := r.configWarnings()
	configStatus := r.renderState.GetConfigStatus()

	tempFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   fontSize,
	}
	lineHeight := fontSize * 1.5

	height := helpPadding * 2
	height += fontSize * 2 // Title
	height += float64(len(lines)) * lineHeight
	height += lineHeight * 3 // Spacing, "System:" and config status
	height += float64(len(warnings)) * lineHeight

	maxActionWidth, maxKeysWidth, maxDescWidth := 0.0, 0.0, 0.0
	for _, line := range lines {
		aw, _ := text.Measure(line.action, tempFont, 0)
		kw, _ := text.Measure(line.keys, tempFont, 0)
		dw, _ := text.Measure(line.description, tempFont, 0)
		maxActionWidth = max(maxActionWidth, aw)
		maxKeysWidth = max(maxKeysWidth, kw)
		maxDescWidth = max(maxDescWidth, dw)
	}
	width := 40 + maxActionWidth + 20 + 30 + maxKeysWidth + 20 + maxDescWidth + helpPadding

	statusWidth, _ := text.Measure("Config Status: "+configStatus.Status, tempFont, 0)
	width = max(width, statusWidth+helpPadding*2+80)
	for _, warning := range warnings {
		ww, _ := text.Measure(warning, tempFont, 0)
		width = max(width, ww+helpPadding*2+80)
	}

	return width, height
}

// calculateOptimalFontSize finds the largest font size that fits within the given dimensions
func (r *Renderer) calculateOptimalFontSize(availableWidth, availableHeight float64) (float64, bool) {
	maxFontSize := r.renderState.GetFontSize()

	fits := func(size float64) bool {
		w, h := r.calculateRequiredDimensions(size)
		return w <= availableWidth && h <= availableHeight
	}

	if !fits(minHelpFontSize) {
		return minHelpFontSize, false
	}
	if fits(maxFontSize) {
		return maxFontSize, true
	}

	// Binary search for optimal font size
	low, high := minHelpFontSize, maxFontSize
	bestSize := minHelpFontSize
	for high-low > 0.5 {
		mid := (low + high) / 2.0
		if fits(mid) {
			bestSize = mid
			low = mid
		} else {
			high = mid
		}
	}
	return bestSize, true
}

// drawMarginTooSmallMessage displays Fermat's margin joke when help cannot fit
func (r *Renderer) drawMarginTooSmallMessage(screen *ebiten.Image) {
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	DrawFilledRect(screen, 0, 0, w, h, bgColorLight)

	jokeFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   16.0,
	}

	message := "Hanc marginis exiguitas non caperet."
	subtitle := "(This margin is too small to contain it.)"

	messageWidth, messageHeight := text.Measure(message, jokeFont, 0)
	subtitleWidth, _ := text.Measure(subtitle, jokeFont, 0)

	messageX := w/2 - messageWidth/2
	messageY := h/2 - messageHeight/2
	DrawText(screen, message, jokeFont, messageX, messageY, colorWhite)
	DrawText(screen, subtitle, jokeFont, w/2-subtitleWidth/2, messageY+messageHeight+10, colorGray)
}
