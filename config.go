package main

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/pbnjay/memory"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Window size constants
const (
	defaultWidth  = 1280
	defaultHeight = 720
	minWidth      = 320
	minHeight     = 240
)

const (
	mib = 1024 * 1024
	gib = 1024 * mib
)

// Config status values reported by ConfigLoadResult
const (
	ConfigStatusOK      = "OK"
	ConfigStatusDefault = "Default"
	ConfigStatusWarning = "Warning"
	ConfigStatusError   = "Error"
)

// MemoryConfig bounds the bytes kept by decoded images.
type MemoryConfig struct {
	BudgetRatio float64 `yaml:"budget_ratio"` // share of system RAM (0.0 - 1.0)
	MinBudget   int64   `yaml:"min_budget"`
	MaxBudget   int64   `yaml:"max_budget"`
}

// InputConfig controls click vs hold detection for navigation keys.
type InputConfig struct {
	// Below this, a press navigates once on release.
	HoldThreshold time.Duration `yaml:"hold_threshold"`
	// Interval between repeats once the hold threshold is crossed.
	RepeatInterval time.Duration `yaml:"repeat_interval"`
}

// PreloadConfig controls which neighbours the preloader decodes and at which tier.
type PreloadConfig struct {
	AheadForward        int           `yaml:"ahead_forward"`
	BehindForward       int           `yaml:"behind_forward"`
	AheadBackward       int           `yaml:"ahead_backward"`
	BehindBackward      int           `yaml:"behind_backward"`
	SymmetricRange      int           `yaml:"symmetric_range"`
	FullQualityCount    int           `yaml:"full_quality_count"`
	PreviewQualityCount int           `yaml:"preview_quality_count"`
	IdlePollInterval    time.Duration `yaml:"idle_poll_interval"`
	MaxParallelTasks    int           `yaml:"max_parallel_tasks"` // 0 = all cores
}

// RenderConfig controls the window and drawing.
type RenderConfig struct {
	WindowWidth      int     `yaml:"window_width"`
	WindowHeight     int     `yaml:"window_height"`
	Background       string  `yaml:"background"` // #rrggbb or #rrggbbaa
	TextureCacheSize int     `yaml:"texture_cache_size"`
	ShowInfo         bool    `yaml:"show_info"`
	FontSize         float64 `yaml:"font_size"` // largest overlay font size
}

type Config struct {
	Memory      MemoryConfig        `yaml:"memory"`
	Input       InputConfig         `yaml:"input"`
	Preload     PreloadConfig       `yaml:"preload"`
	Render      RenderConfig        `yaml:"render"`
	SortMethod  string              `yaml:"sort_method"`
	Keybindings map[string][]string `yaml:"keybindings"`
}

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	Path     string
	Warnings []string
	Status   string
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Memory: MemoryConfig{
			BudgetRatio: 0.10,
			MinBudget:   100 * mib,
			MaxBudget:   4 * gib,
		},
		Input: InputConfig{
			HoldThreshold:  150 * time.Millisecond,
			RepeatInterval: 60 * time.Millisecond, // ~16 images per second
		},
		Preload: PreloadConfig{
			AheadForward:        30,
			BehindForward:       3,
			AheadBackward:       3,
			BehindBackward:      30,
			SymmetricRange:      15,
			FullQualityCount:    5,
			PreviewQualityCount: 10,
			IdlePollInterval:    time.Millisecond,
			MaxParallelTasks:    0,
		},
		Render: RenderConfig{
			WindowWidth:      defaultWidth,
			WindowHeight:     defaultHeight,
			Background:       "#000000",
			TextureCacheSize: 8,
			ShowInfo:         false,
			FontSize:         24,
		},
		SortMethod:  sortMethodNames[SortNatural],
		Keybindings: GetDefaultKeybindings(),
	}
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "fiv.yaml"
	}
	return filepath.Join(homeDir, ".fiv.yaml")
}

// loadConfigFromPath reads the YAML config at configPath on top of the
// defaults. A missing or broken file never fails: defaults are used and the
// problem is reported through Status and Warnings.
func loadConfigFromPath(configPath string) ConfigLoadResult {
	result := ConfigLoadResult{
		Config:   DefaultConfig(),
		Path:     configPath,
		Warnings: []string{},
		Status:   ConfigStatusOK,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			err = zerr.With(zerr.Wrap(err, ErrConfigRead.Error()), "path", configPath)
			log.WithError(err).Warn("Using default config")
			result.Status = ConfigStatusError
			result.Warnings = append(result.Warnings, err.Error())
			return result
		}
		// Config file not found is not an error - use defaults
		result.Status = ConfigStatusDefault
		return result
	}

	// Unmarshal over a fresh default so omitted keys keep their defaults.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		err = zerr.With(zerr.Wrap(err, ErrConfigParse.Error()), "path", configPath)
		log.WithError(err).Warn("Invalid config file, using defaults")
		result.Status = ConfigStatusError
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}

	warnings := config.normalize()
	if len(warnings) > 0 {
		for _, w := range warnings {
			log.WithField("path", configPath).Warn("Config value adjusted: " + w)
		}
		result.Status = ConfigStatusWarning
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.Config = config
	return result
}

// normalize clamps out-of-range values back to sane ones and returns a
// description of every change it made.
func (c *Config) normalize() []string {
	var warnings []string
	defaults := DefaultConfig()
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	// Memory
	if c.Memory.BudgetRatio <= 0 || c.Memory.BudgetRatio > 1 {
		warn("memory.budget_ratio %.2f out of range (0, 1], using %.2f", c.Memory.BudgetRatio, defaults.Memory.BudgetRatio)
		c.Memory.BudgetRatio = defaults.Memory.BudgetRatio
	}
	if c.Memory.MinBudget < 16*mib {
		warn("memory.min_budget %d below 16MiB, using %d", c.Memory.MinBudget, defaults.Memory.MinBudget)
		c.Memory.MinBudget = defaults.Memory.MinBudget
	}
	if c.Memory.MaxBudget < c.Memory.MinBudget {
		warn("memory.max_budget %d below min_budget, using %d", c.Memory.MaxBudget, c.Memory.MinBudget)
		c.Memory.MaxBudget = c.Memory.MinBudget
	}

	// Input
	if c.Input.HoldThreshold <= 0 {
		warn("input.hold_threshold must be positive, using %s", defaults.Input.HoldThreshold)
		c.Input.HoldThreshold = defaults.Input.HoldThreshold
	}
	if c.Input.RepeatInterval <= 0 {
		warn("input.repeat_interval must be positive, using %s", defaults.Input.RepeatInterval)
		c.Input.RepeatInterval = defaults.Input.RepeatInterval
	}

	// Preload ranges (0 - 500)
	ranges := []struct {
		name  string
		value *int
	}{
		{"ahead_forward", &c.Preload.AheadForward},
		{"behind_forward", &c.Preload.BehindForward},
		{"ahead_backward", &c.Preload.AheadBackward},
		{"behind_backward", &c.Preload.BehindBackward},
		{"symmetric_range", &c.Preload.SymmetricRange},
		{"full_quality_count", &c.Preload.FullQualityCount},
		{"preview_quality_count", &c.Preload.PreviewQualityCount},
	}
	for _, r := range ranges {
		if *r.value < 0 {
			warn("preload.%s %d is negative, using 0", r.name, *r.value)
			*r.value = 0
		} else if *r.value > 500 {
			warn("preload.%s %d above 500, using 500", r.name, *r.value)
			*r.value = 500
		}
	}
	if c.Preload.IdlePollInterval < time.Millisecond {
		warn("preload.idle_poll_interval %s below 1ms, using 1ms", c.Preload.IdlePollInterval)
		c.Preload.IdlePollInterval = time.Millisecond
	}
	if c.Preload.MaxParallelTasks < 0 {
		warn("preload.max_parallel_tasks %d is negative, using all cores", c.Preload.MaxParallelTasks)
		c.Preload.MaxParallelTasks = 0
	}

	// Render
	if c.Render.WindowWidth < minWidth {
		warn("render.window_width %d below %d, using %d", c.Render.WindowWidth, minWidth, defaultWidth)
		c.Render.WindowWidth = defaultWidth
	}
	if c.Render.WindowHeight < minHeight {
		warn("render.window_height %d below %d, using %d", c.Render.WindowHeight, minHeight, defaultHeight)
		c.Render.WindowHeight = defaultHeight
	}
	if _, err := parseHexColor(c.Render.Background); err != nil {
		warn("render.background: %v, using %s", err, defaults.Render.Background)
		c.Render.Background = defaults.Render.Background
	}
	if c.Render.TextureCacheSize < 1 {
		warn("render.texture_cache_size %d below 1, using %d", c.Render.TextureCacheSize, defaults.Render.TextureCacheSize)
		c.Render.TextureCacheSize = defaults.Render.TextureCacheSize
	} else if c.Render.TextureCacheSize > 64 {
		warn("render.texture_cache_size %d above 64, using 64", c.Render.TextureCacheSize)
		c.Render.TextureCacheSize = 64
	}
	if c.Render.FontSize < 8 || c.Render.FontSize > 96 {
		warn("render.font_size %.1f out of range [8, 96], using %.1f", c.Render.FontSize, defaults.Render.FontSize)
		c.Render.FontSize = defaults.Render.FontSize
	}

	// Sort method
	if _, ok := parseSortMethod(c.SortMethod); !ok {
		warn("unknown sort_method %q, using %s", c.SortMethod, defaults.SortMethod)
		c.SortMethod = defaults.SortMethod
	}

	// Keybindings - fill in missing actions, reset everything on errors
	if c.Keybindings == nil {
		c.Keybindings = GetDefaultKeybindings()
	} else {
		for action, defaultKeys := range GetDefaultKeybindings() {
			if _, exists := c.Keybindings[action]; !exists {
				c.Keybindings[action] = defaultKeys
			}
		}
		if err := validateKeybindings(c.Keybindings); err != nil {
			warn("keybinding errors, using defaults: %v", err)
			log.WithField("keys", strings.Join(getValidKeyNames(), " ")).Info("Valid key names")
			c.Keybindings = GetDefaultKeybindings()
		}
	}

	return warnings
}

// Budget returns the decoded-image memory budget in bytes for this machine.
func (m MemoryConfig) Budget() int64 {
	return m.budgetFor(memory.TotalMemory())
}

func (m MemoryConfig) budgetFor(totalRAM uint64) int64 {
	if totalRAM == 0 {
		return m.MinBudget
	}
	budget := int64(float64(totalRAM) * m.BudgetRatio)
	return min(max(budget, m.MinBudget), m.MaxBudget)
}

// RangeForDirection returns how many images to preload (ahead, behind) of
// the current one for the given direction of travel.
func (p PreloadConfig) RangeForDirection(direction Direction) (int, int) {
	switch direction {
	case DirectionForward:
		return p.AheadForward, p.BehindForward
	case DirectionBackward:
		return p.AheadBackward, p.BehindBackward
	default:
		return p.SymmetricRange, p.SymmetricRange
	}
}

// QualityForDistance returns the tier wanted for an image distance steps away.
func (p PreloadConfig) QualityForDistance(distance int) QualityTier {
	switch {
	case distance <= p.FullQualityCount:
		return QualityFull
	case distance <= p.FullQualityCount+p.PreviewQualityCount:
		return QualityPreview
	default:
		return QualityThumbnail
	}
}

// TotalRange is the keep range: images further away get evicted.
func (p PreloadConfig) TotalRange() int {
	return max(p.AheadForward, p.BehindBackward) + 5
}

// BackgroundColor returns the parsed background, falling back to black.
func (r RenderConfig) BackgroundColor() color.RGBA {
	c, err := parseHexColor(r.Background)
	if err != nil {
		return color.RGBA{0, 0, 0, 255}
	}
	return c
}

// parseHexColor parses #rrggbb or #rrggbbaa.
func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func saveConfigToPath(config Config, configPath string) error {
	// Don't save if size is too small
	if config.Render.WindowWidth < minWidth || config.Render.WindowHeight < minHeight {
		log.WithFields(log.Fields{
			"width":  config.Render.WindowWidth,
			"height": config.Render.WindowHeight,
		}).Warn("Not saving config with invalid window size")
		return nil
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to save config"), "path", configPath)
	}
	return nil
}
