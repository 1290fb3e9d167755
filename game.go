package main

import (
	"context"
	"image/color"

	"github.com/apex/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Game is the ebiten game: it owns navigation and drawing, while the
// preloader fills the store in the background.
type Game struct {
	paths     []ImagePath
	store     *ImageStore
	shared    *SharedState
	view      *ViewState
	input     *InputState
	preloader *Preloader

	config       Config
	configStatus ConfigLoadResult
	background   color.RGBA

	keybindingManager *KeybindingManager
	inputHandler      *InputHandler
	renderer          *Renderer
	textures          *TextureCache

	showHelp   bool
	showInfo   bool
	fullscreen bool
	exiting    bool

	setTitle      func(string)
	lastTitle     string
	setFullscreen func(bool)
	windowSize    func() (int, int)

	// last windowed size, kept current while the window exists
	savedWidth, savedHeight int
}

// NewGame wires the viewer around an already scanned image list.
func NewGame(scan ScanResult, configStatus ConfigLoadResult, budget *MemoryBudget) *Game {
	config := configStatus.Config
	total := len(scan.Paths)

	g := &Game{
		paths:         scan.Paths,
		store:         NewImageStore(total, budget),
		shared:        NewSharedState(total),
		view:          NewViewState(total, config.Render.WindowWidth, config.Render.WindowHeight),
		input:         NewInputState(config.Input),
		config:        config,
		configStatus:  configStatus,
		background:    config.Render.BackgroundColor(),
		showInfo:      config.Render.ShowInfo,
		textures:      NewTextureCache(config.Render.TextureCacheSize),
		setTitle:      ebiten.SetWindowTitle,
		setFullscreen: ebiten.SetFullscreen,
		windowSize:    ebiten.WindowSize,
	}

	g.keybindingManager = NewKeybindingManager(config.Keybindings)
	g.inputHandler = NewInputHandler(g, g.input, g.keybindingManager)
	g.renderer = NewRenderer(g, g.textures)
	g.preloader = NewPreloader(g.store, g.paths, g.shared, config.Preload)

	if total > 0 {
		start := min(max(scan.Start, 0), total-1)
		g.view.CurrentIndex = start
		g.shared.SetCurrent(start)
	}
	return g
}

// LoadInitial decodes the first visible image synchronously so the window
// never opens blank. Failures are recorded on the slot and shown in place.
func (g *Game) LoadInitial(ctx context.Context) {
	if len(g.paths) == 0 {
		return
	}
	idx := g.view.CurrentIndex
	data, err := Decode(ctx, g.paths[idx], QualityFull)
	if err != nil {
		log.WithError(err).WithField("path", g.paths[idx].Path).Warn("Failed to decode image")
		g.store.Slot(idx).Fail(err)
		return
	}
	if !g.store.Insert(idx, data) {
		// Too large for the budget at full size: fall back to a preview
		g.store.Insert(idx, data.Downscale(QualityPreview))
	}
}

// Start launches background preloading.
func (g *Game) Start(ctx context.Context) {
	g.preloader.Start(ctx)
}

// Shutdown stops the preloader and frees GPU textures.
func (g *Game) Shutdown() {
	g.shared.RequestShutdown()
	g.preloader.Stop()
	g.textures.Purge()

	stats := g.preloader.Stats()
	debugLog("Preload stats: decoded=%d failed=%d rejected=%d passes=%d",
		stats.Decoded, stats.Failed, stats.Rejected, stats.Passes)
}

func (g *Game) Update() error {
	// Closing the window ends RunGame without another Update
	if !g.fullscreen {
		g.savedWidth, g.savedHeight = g.windowSize()
	}

	g.inputHandler.HandleInput()
	// Shutdown may also be requested from a signal handler
	if g.exiting || g.shared.IsShutdown() {
		return ebiten.Termination
	}

	if g.active() {
		g.refreshView()
	}
	return nil
}

// active reports whether the title or tier on screen may still change:
// keys are held, the view moved, or a better tier is still coming.
func (g *Game) active() bool {
	return g.input.IsNavigating() || g.view.NeedsRender || g.view.NeedsQualityUpgrade()
}

// refreshView records the tier on screen and keeps the title current.
func (g *Game) refreshView() {
	frame := g.CurrentFrame()
	if frame.Data != nil {
		if !g.view.HasRendered || frame.Data.Quality != g.view.LastRenderQuality {
			g.view.RenderComplete(frame.Data.Quality)
		}
	}

	title := g.view.Title(frame.Name)
	if title != g.lastTitle {
		g.setTitle(title)
		g.lastTitle = title
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.view.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// CurrentFrame implements RenderState.
func (g *Game) CurrentFrame() DisplayFrame {
	frame := DisplayFrame{Index: g.view.CurrentIndex, Total: len(g.paths)}
	slot := g.store.Slot(frame.Index)
	if slot == nil {
		return frame
	}
	frame.Name = g.paths[frame.Index].Name()
	// Generation first: a concurrent upgrade then only causes one extra upload.
	frame.Generation = slot.Generation()
	frame.Data = slot.Read()
	frame.Err = slot.Err()
	return frame
}

func (g *Game) IsShowingHelp() bool                 { return g.showHelp }
func (g *Game) IsShowingInfo() bool                 { return g.showInfo }
func (g *Game) IsFullscreen() bool                  { return g.fullscreen }
func (g *Game) GetFontSize() float64                { return g.config.Render.FontSize }
func (g *Game) GetBackgroundColor() color.RGBA      { return g.background }
func (g *Game) GetConfigStatus() ConfigLoadResult   { return g.configStatus }
func (g *Game) GetKeybindings() map[string][]string { return g.keybindingManager.GetKeybindings() }
func (g *Game) GetPreloadStats() PreloadStats       { return g.preloader.Stats() }

func (g *Game) GetMemoryStatus() (int64, int64) {
	return g.store.MemoryUsed(), g.store.Budget().Total()
}

// Exit implements InputActions.
func (g *Game) Exit() {
	g.exiting = true
	g.shared.RequestShutdown()
}

func (g *Game) ToggleHelp() { g.showHelp = !g.showHelp }
func (g *Game) ToggleInfo() { g.showInfo = !g.showInfo }

func (g *Game) ToggleFullscreen() {
	g.fullscreen = !g.fullscreen
	g.setFullscreen(g.fullscreen)
	// The screen may be recreated at the same size
	g.renderer.Invalidate()
}

// Navigate moves the view and tells the preloader where we are now.
func (g *Game) Navigate(delta int) {
	prev := g.view.CurrentIndex
	g.view.Navigate(delta)
	if g.view.CurrentIndex == prev {
		return
	}
	g.shared.SetCurrent(g.view.CurrentIndex)
	g.preloader.Wake()
	debugLog("Navigate %d -> %d (%s)", prev+1, g.view.CurrentIndex+1, g.shared.Direction())
}

func (g *Game) JumpFirst() { g.input.PressFirst() }
func (g *Game) JumpLast()  { g.input.PressLast() }

func (g *Game) GetTotalImagesCount() int { return len(g.paths) }

// windowSizeForSave returns the size to remember, or false when the
// current state should not be persisted.
func (g *Game) windowSizeForSave() (int, int, bool) {
	if g.fullscreen || g.configStatus.Status == ConfigStatusError {
		return 0, 0, false
	}
	w, h := g.savedWidth, g.savedHeight
	if w < minWidth || h < minHeight {
		return 0, 0, false
	}
	return w, h, true
}

// SaveWindowSize writes the window size back to the config file at path.
func (g *Game) SaveWindowSize(path string) {
	w, h, ok := g.windowSizeForSave()
	if !ok || (w == g.config.Render.WindowWidth && h == g.config.Render.WindowHeight) {
		return
	}
	config := g.config
	config.Render.WindowWidth = w
	config.Render.WindowHeight = h
	if err := saveConfigToPath(config, path); err != nil {
		log.WithError(err).Warn("Failed to save window size")
	}
}
