package main

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRenderState is a RenderState with fixed answers.
type stubRenderState struct {
	frame        DisplayFrame
	showHelp     bool
	showInfo     bool
	keybindings  map[string][]string
	configStatus ConfigLoadResult
	used, total  int64
	stats        PreloadStats
}

func (s *stubRenderState) CurrentFrame() DisplayFrame          { return s.frame }
func (s *stubRenderState) IsShowingHelp() bool                 { return s.showHelp }
func (s *stubRenderState) IsShowingInfo() bool                 { return s.showInfo }
func (s *stubRenderState) IsFullscreen() bool                  { return false }
func (s *stubRenderState) GetFontSize() float64                { return 24 }
func (s *stubRenderState) GetBackgroundColor() color.RGBA      { return color.RGBA{A: 255} }
func (s *stubRenderState) GetConfigStatus() ConfigLoadResult   { return s.configStatus }
func (s *stubRenderState) GetKeybindings() map[string][]string { return s.keybindings }
func (s *stubRenderState) GetMemoryStatus() (int64, int64)     { return s.used, s.total }
func (s *stubRenderState) GetPreloadStats() PreloadStats       { return s.stats }

func TestFitRect(t *testing.T) {
	tests := []struct {
		name              string
		imgW, imgH        float64
		winW, winH        float64
		scale, offX, offY float64
	}{
		{"wide image letterboxed", 200, 100, 400, 400, 2, 0, 100},
		{"tall image pillarboxed", 100, 200, 400, 200, 1, 150, 0},
		{"large image shrinks", 4000, 3000, 800, 600, 0.2, 0, 0},
		{"exact fit", 800, 600, 800, 600, 1, 0, 0},
		{"empty image", 0, 100, 800, 600, 0, 0, 0},
		{"minimized window", 100, 100, 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, offX, offY := fitRect(tt.imgW, tt.imgH, tt.winW, tt.winH)
			assert.InDelta(t, tt.scale, scale, 1e-9)
			assert.InDelta(t, tt.offX, offX, 1e-9)
			assert.InDelta(t, tt.offY, offY, 1e-9)
		})
	}
}

func TestBuildInfoString(t *testing.T) {
	stats := PreloadStats{Decoded: 7}

	frame := DisplayFrame{Index: 2, Total: 10, Name: "c.png", Data: makeImageData(640, 480, QualityPreview)}
	assert.Equal(t, "[3/10] c.png  preview 640x480  mem 1.5 MiB / 100.0 MiB  decoded 7",
		buildInfoString(frame, 3*mib/2, 100*mib, stats))

	frame = DisplayFrame{Index: 0, Total: 1, Name: "a.png"}
	assert.Contains(t, buildInfoString(frame, 0, mib, stats), "a.png  loading")

	frame.Err = errors.New("boom")
	assert.Contains(t, buildInfoString(frame, 0, mib, stats), "a.png  error")

	assert.Equal(t, "No images", buildInfoString(DisplayFrame{}, 0, 0, stats))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0.0 MiB", formatBytes(0))
	assert.Equal(t, "2.5 MiB", formatBytes(5*mib/2))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abcdefg...", truncateText("abcdefghijklmnop", 10))
	assert.Equal(t, "日本語...", truncateText("日本語のファイル名", 6), "counts runes")
	assert.Equal(t, "abcdef", truncateText("abcdef", 3), "too small to truncate")
}

func TestRenderStateSnapshot(t *testing.T) {
	state := &stubRenderState{
		frame: DisplayFrame{Index: 1, Generation: 4},
		used:  100,
	}

	a := NewRenderStateSnapshot(state, 800, 600)
	b := NewRenderStateSnapshot(state, 800, 600)
	assert.True(t, a.Equals(b))
	assert.Zero(t, a.MemoryUsed, "memory only matters while info is shown")

	state.used = 200
	state.stats.Decoded = 3
	assert.True(t, a.Equals(NewRenderStateSnapshot(state, 800, 600)))

	state.showInfo = true
	withInfo := NewRenderStateSnapshot(state, 800, 600)
	assert.False(t, a.Equals(withInfo))
	assert.Equal(t, int64(200), withInfo.MemoryUsed)
	assert.Equal(t, int64(3), withInfo.Decoded)

	state.stats.Decoded = 4
	assert.False(t, withInfo.Equals(NewRenderStateSnapshot(state, 800, 600)), "decode count on the info bar redraws")
	state.stats.Decoded = 3

	state.frame.Generation = 5
	assert.False(t, withInfo.Equals(NewRenderStateSnapshot(state, 800, 600)), "slot upgrade redraws")
	assert.False(t, withInfo.Equals(NewRenderStateSnapshot(state, 1024, 600)), "resize redraws")

	var none *RenderStateSnapshot
	assert.False(t, none.Equals(a))
	assert.False(t, a.Equals(nil))
}

func TestHelpLines(t *testing.T) {
	keybindings := GetDefaultKeybindings()
	delete(keybindings, "info")
	keybindings["exit"] = []string{"Escape", "KeyX"}

	r := NewRenderer(&stubRenderState{keybindings: keybindings}, nil)
	lines := r.helpLines()

	var actions []string
	for _, line := range lines {
		actions = append(actions, line.action)
	}
	assert.Equal(t, []string{"next", "previous", "jump_first", "jump_last", "fullscreen", "help", "exit"}, actions)

	last := lines[len(lines)-1]
	assert.Equal(t, "Escape, KeyX", last.keys)
	assert.Equal(t, "Quit application", last.description)
}

func TestConfigWarningsAreLimited(t *testing.T) {
	long := "this warning is considerably longer than fifty characters in total"
	r := NewRenderer(&stubRenderState{configStatus: ConfigLoadResult{
		Warnings: []string{long, "second", "third"},
	}}, nil)

	warnings := r.configWarnings()
	require.Len(t, warnings, maxWarningLines)
	assert.Equal(t, "• "+truncateText(long, 50), warnings[0])
	assert.Equal(t, "• second", warnings[1])
}

func TestInvalidateForcesRedraw(t *testing.T) {
	r := NewRenderer(&stubRenderState{}, nil)
	r.lastSnapshot = &RenderStateSnapshot{}
	r.Invalidate()
	assert.Nil(t, r.lastSnapshot)
}
