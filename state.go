package main

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// Direction is the inferred browsing direction.
type Direction int32

const (
	DirectionUnknown Direction = iota
	DirectionForward
	DirectionBackward
)

func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionBackward:
		return "backward"
	default:
		return "unknown"
	}
}

// Navigation sentinels understood by ViewState.Navigate.
const (
	NavFirst = math.MinInt
	NavLast  = math.MaxInt
)

// SharedState is the navigation state published by the render loop and
// consumed by the preloader.
type SharedState struct {
	current    atomic.Int64
	generation atomic.Uint64
	direction  atomic.Int32
	total      atomic.Int64
	shutdown   atomic.Bool
}

func NewSharedState(total int) *SharedState {
	s := &SharedState{}
	s.total.Store(int64(total))
	return s
}

func (s *SharedState) Total() int {
	return int(s.total.Load())
}

// SetCurrent publishes a new index and infers the direction of travel.
// Stepping across either end of the list counts as a single step.
func (s *SharedState) SetCurrent(index int) {
	prev := int(s.current.Load())
	total := s.Total()

	var dir Direction
	switch {
	case total == 0 || prev == index:
		dir = DirectionUnknown
	case index == (prev+1)%total:
		dir = DirectionForward
	case index == (prev+total-1)%total:
		dir = DirectionBackward
	case index > prev:
		dir = DirectionForward
	default:
		dir = DirectionBackward
	}

	s.direction.Store(int32(dir))
	s.current.Store(int64(index))
	s.generation.Add(1)
}

func (s *SharedState) Current() int {
	return int(s.current.Load())
}

func (s *SharedState) Direction() Direction {
	return Direction(s.direction.Load())
}

// Generation increments on every SetCurrent.
func (s *SharedState) Generation() uint64 {
	return s.generation.Load()
}

func (s *SharedState) RequestShutdown() {
	s.shutdown.Store(true)
}

func (s *SharedState) IsShutdown() bool {
	return s.shutdown.Load()
}

// ViewState is the render loop's view of what is on screen.
type ViewState struct {
	CurrentIndex      int
	TotalImages       int
	WindowWidth       int
	WindowHeight      int
	NeedsRender       bool
	LastRenderQuality QualityTier
	HasRendered       bool
}

func NewViewState(total, width, height int) *ViewState {
	return &ViewState{
		TotalImages:  total,
		WindowWidth:  width,
		WindowHeight: height,
		NeedsRender:  true,
	}
}

// Navigate moves by delta, wrapping at both ends. NavFirst and NavLast
// jump to the first and last image.
func (v *ViewState) Navigate(delta int) {
	if v.TotalImages == 0 {
		return
	}

	switch delta {
	case NavFirst:
		v.CurrentIndex = 0
	case NavLast:
		v.CurrentIndex = v.TotalImages - 1
	default:
		idx := (v.CurrentIndex + delta) % v.TotalImages
		if idx < 0 {
			idx += v.TotalImages
		}
		v.CurrentIndex = idx
	}

	v.NeedsRender = true
	v.HasRendered = false
}

// Resize records a new window size. Zero sizes (minimized) are ignored.
func (v *ViewState) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width != v.WindowWidth || height != v.WindowHeight {
		v.WindowWidth = width
		v.WindowHeight = height
		v.NeedsRender = true
	}
}

// RenderComplete records the tier that was drawn.
func (v *ViewState) RenderComplete(quality QualityTier) {
	v.NeedsRender = false
	v.LastRenderQuality = quality
	v.HasRendered = true
}

// NeedsQualityUpgrade reports whether the last render was below full quality.
func (v *ViewState) NeedsQualityUpgrade() bool {
	return v.HasRendered && v.LastRenderQuality != QualityFull
}

// Title builds the window title for the current image.
func (v *ViewState) Title(name string) string {
	if v.TotalImages == 0 {
		return "Fiv - No images found"
	}

	indicator := ""
	if v.HasRendered {
		switch v.LastRenderQuality {
		case QualityThumbnail:
			indicator = " [loading...]"
		case QualityPreview:
			indicator = " [preview]"
		}
	}
	return fmt.Sprintf("Fiv - %s [%d/%d]%s", name, v.CurrentIndex+1, v.TotalImages, indicator)
}

// InputState turns key press and release edges into navigation steps.
// A quick tap navigates once on release; holding past the hold threshold
// navigates immediately and then once per repeat interval.
type InputState struct {
	holdThreshold  time.Duration
	repeatInterval time.Duration

	nextHeld     bool
	previousHeld bool
	firstPressed bool
	lastPressed  bool

	pressing       bool
	pressStart     time.Time
	pressDirection int
	inRepeatMode   bool
	lastRepeat     time.Time
	pendingClick   int
}

func NewInputState(cfg InputConfig) *InputState {
	return &InputState{
		holdThreshold:  cfg.HoldThreshold,
		repeatInterval: cfg.RepeatInterval,
	}
}

// SetHeld records whether a key navigating by step is held at time now.
// Positive steps move forward, negative ones backward.
func (s *InputState) SetHeld(step int, pressed bool, now time.Time) {
	switch {
	case step > 0:
		s.setHeld(&s.nextHeld, pressed, 1, now)
	case step < 0:
		s.setHeld(&s.previousHeld, pressed, -1, now)
	}
}
func (s *InputState) setHeld(held *bool, pressed bool, direction int, now time.Time) {
	switch {
	case pressed && !*held:
		s.startPress(direction, now)
	case !pressed && *held:
		s.endPress(direction)
	}
	*held = pressed
}

// PressFirst queues a jump to the first image.
func (s *InputState) PressFirst() { s.firstPressed = true }

// PressLast queues a jump to the last image.
func (s *InputState) PressLast() { s.lastPressed = true }

func (s *InputState) startPress(direction int, now time.Time) {
	s.pressing = true
	s.pressStart = now
	s.pressDirection = direction
	s.inRepeatMode = false
	s.pendingClick = 0
}

func (s *InputState) endPress(direction int) {
	if !s.pressing || s.pressDirection != direction {
		return
	}
	if !s.inRepeatMode {
		s.pendingClick = direction
	}
	s.pressing = false
	s.pressDirection = 0
	s.inRepeatMode = false
}

// Process returns the navigation delta due at time now, if any.
func (s *InputState) Process(now time.Time) (int, bool) {
	if s.firstPressed {
		s.firstPressed = false
		return NavFirst, true
	}
	if s.lastPressed {
		s.lastPressed = false
		return NavLast, true
	}

	if s.pendingClick != 0 {
		dir := s.pendingClick
		s.pendingClick = 0
		return dir, true
	}

	if !s.pressing {
		return 0, false
	}

	if !s.inRepeatMode {
		if now.Sub(s.pressStart) >= s.holdThreshold {
			s.inRepeatMode = true
			s.lastRepeat = now
			return s.pressDirection, true
		}
		return 0, false
	}

	if now.Sub(s.lastRepeat) >= s.repeatInterval {
		s.lastRepeat = now
		return s.pressDirection, true
	}
	return 0, false
}

// IsNavigating reports whether any navigation input is active or queued.
func (s *InputState) IsNavigating() bool {
	return s.nextHeld || s.previousHeld || s.firstPressed || s.lastPressed || s.pendingClick != 0
}
