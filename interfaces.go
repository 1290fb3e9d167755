package main

import "image/color"

// DisplayFrame is everything the renderer needs to know about the image on screen.
type DisplayFrame struct {
	Index      int
	Total      int
	Name       string
	Data       *ImageData // nil while nothing is decoded yet
	Generation uint64     // slot generation Data was read at
	Err        error      // sticky decode failure
}

// RenderState provides read-only access to game state for the renderer
type RenderState interface {
	CurrentFrame() DisplayFrame

	// UI state
	IsShowingHelp() bool
	IsShowingInfo() bool
	IsFullscreen() bool

	// Display data
	GetFontSize() float64
	GetBackgroundColor() color.RGBA
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMemoryStatus() (used, total int64)
	GetPreloadStats() PreloadStats
}

// RenderStateSnapshot captures what was last drawn. The screen is not
// cleared every frame, so Draw is skipped while the snapshot is unchanged.
type RenderStateSnapshot struct {
	Index        int
	Generation   uint64
	ShowHelp     bool
	ShowInfo     bool
	MemoryUsed   int64 // only tracked while the info bar is shown
	Decoded      int64 // ditto
	WindowWidth  int
	WindowHeight int
}

// NewRenderStateSnapshot takes a snapshot of the state that affects drawing.
func NewRenderStateSnapshot(state RenderState, windowWidth, windowHeight int) *RenderStateSnapshot {
	frame := state.CurrentFrame()
	snapshot := &RenderStateSnapshot{
		Index:        frame.Index,
		Generation:   frame.Generation,
		ShowHelp:     state.IsShowingHelp(),
		ShowInfo:     state.IsShowingInfo(),
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
	}
	if snapshot.ShowInfo {
		snapshot.MemoryUsed, _ = state.GetMemoryStatus()
		snapshot.Decoded = state.GetPreloadStats().Decoded
	}
	return snapshot
}

// Equals checks if two snapshots are equal
func (s *RenderStateSnapshot) Equals(other *RenderStateSnapshot) bool {
	if s == nil || other == nil {
		return false
	}
	return *s == *other
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()

	// Display toggles
	ToggleHelp()
	ToggleInfo()
	ToggleFullscreen()

	// Navigation
	Navigate(delta int)
	JumpFirst()
	JumpLast()

	GetTotalImagesCount() int
}
