package main

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.trai.ch/zerr"
)

// KeybindingManager handles dynamic keybinding processing
type KeybindingManager struct {
	keybindings  map[string][]string
	combinations map[string][]KeyCombination
}

// NewKeybindingManager creates a new KeybindingManager. Invalid key strings
// are skipped; config loading has already reported them.
func NewKeybindingManager(keybindings map[string][]string) *KeybindingManager {
	km := &KeybindingManager{}
	km.UpdateKeybindings(keybindings)
	return km
}

var keyMapping = map[string]ebiten.Key{
	// Letters
	"KeyA": ebiten.KeyA, "KeyB": ebiten.KeyB, "KeyC": ebiten.KeyC, "KeyD": ebiten.KeyD,
	"KeyE": ebiten.KeyE, "KeyF": ebiten.KeyF, "KeyG": ebiten.KeyG, "KeyH": ebiten.KeyH,
	"KeyI": ebiten.KeyI, "KeyJ": ebiten.KeyJ, "KeyK": ebiten.KeyK, "KeyL": ebiten.KeyL,
	"KeyM": ebiten.KeyM, "KeyN": ebiten.KeyN, "KeyO": ebiten.KeyO, "KeyP": ebiten.KeyP,
	"KeyQ": ebiten.KeyQ, "KeyR": ebiten.KeyR, "KeyS": ebiten.KeyS, "KeyT": ebiten.KeyT,
	"KeyU": ebiten.KeyU, "KeyV": ebiten.KeyV, "KeyW": ebiten.KeyW, "KeyX": ebiten.KeyX,
	"KeyY": ebiten.KeyY, "KeyZ": ebiten.KeyZ,

	// Numbers
	"Key0": ebiten.Key0, "Key1": ebiten.Key1, "Key2": ebiten.Key2, "Key3": ebiten.Key3,
	"Key4": ebiten.Key4, "Key5": ebiten.Key5, "Key6": ebiten.Key6, "Key7": ebiten.Key7,
	"Key8": ebiten.Key8, "Key9": ebiten.Key9,

	// Special keys
	"Space":      ebiten.KeySpace,
	"Backspace":  ebiten.KeyBackspace,
	"Enter":      ebiten.KeyEnter,
	"Escape":     ebiten.KeyEscape,
	"Tab":        ebiten.KeyTab,
	"Home":       ebiten.KeyHome,
	"End":        ebiten.KeyEnd,
	"PageUp":     ebiten.KeyPageUp,
	"PageDown":   ebiten.KeyPageDown,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,

	// Punctuation
	"Comma":     ebiten.KeyComma,
	"Period":    ebiten.KeyPeriod,
	"Slash":     ebiten.KeySlash,
	"Semicolon": ebiten.KeySemicolon,
	"Quote":     ebiten.KeyQuote,
	"Minus":     ebiten.KeyMinus,
	"Equal":     ebiten.KeyEqual,

	// Numpad
	"Numpad0":     ebiten.KeyNumpad0,
	"Numpad1":     ebiten.KeyNumpad1,
	"Numpad2":     ebiten.KeyNumpad2,
	"Numpad3":     ebiten.KeyNumpad3,
	"Numpad4":     ebiten.KeyNumpad4,
	"Numpad5":     ebiten.KeyNumpad5,
	"Numpad6":     ebiten.KeyNumpad6,
	"Numpad7":     ebiten.KeyNumpad7,
	"Numpad8":     ebiten.KeyNumpad8,
	"Numpad9":     ebiten.KeyNumpad9,
	"NumpadEnter": ebiten.KeyNumpadEnter,
}

// getValidKeyNames returns every accepted key name, sorted.
func getValidKeyNames() []string {
	return slices.Sorted(maps.Keys(keyMapping))
}

// KeyCombination represents a key with optional modifiers
type KeyCombination struct {
	Key   ebiten.Key
	Shift bool
	Ctrl  bool
	Alt   bool
}

// parseKeyString parses a key string like "Shift+KeyB" into a KeyCombination
func parseKeyString(keyStr string) (KeyCombination, error) {
	parts := strings.Split(strings.TrimSpace(keyStr), "+")
	var combination KeyCombination

	// Last part should be the actual key
	keyName := parts[len(parts)-1]
	key, exists := keyMapping[keyName]
	if !exists {
		return combination, zerr.With(zerr.With(ErrInvalidKeybinding, "binding", keyStr), "key", keyName)
	}
	combination.Key = key

	for _, modifier := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(modifier)) {
		case "shift":
			combination.Shift = true
		case "ctrl":
			combination.Ctrl = true
		case "alt":
			combination.Alt = true
		default:
			return combination, zerr.With(zerr.With(ErrInvalidKeybinding, "binding", keyStr), "modifier", modifier)
		}
	}

	return combination, nil
}

// modifiersMatch checks that exactly the combination's modifiers are down.
func (c KeyCombination) modifiersMatch(pressed func(ebiten.Key) bool) bool {
	return c.Shift == pressed(ebiten.KeyShift) &&
		c.Ctrl == pressed(ebiten.KeyControl) &&
		c.Alt == pressed(ebiten.KeyAlt)
}

// validateKeybindings checks action names, key strings and conflicts.
func validateKeybindings(keybindings map[string][]string) error {
	var errs []error
	owner := make(map[KeyCombination]string)

	for _, action := range slices.Sorted(maps.Keys(keybindings)) {
		if !isKnownAction(action) {
			errs = append(errs, zerr.With(ErrInvalidKeybinding, "action", action))
			continue
		}
		for _, keyStr := range keybindings[action] {
			combination, err := parseKeyString(keyStr)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if other, taken := owner[combination]; taken && other != action {
				errs = append(errs, zerr.With(zerr.With(ErrKeybindingConflict, "binding", keyStr), "actions", other+","+action))
				continue
			}
			owner[combination] = action
		}
	}
	return errors.Join(errs...)
}

// CheckAction checks if any keybinding for the given action was just pressed
func (km *KeybindingManager) CheckAction(action string) bool {
	for _, combination := range km.combinations[action] {
		if inpututil.IsKeyJustPressed(combination.Key) && combination.modifiersMatch(ebiten.IsKeyPressed) {
			return true
		}
	}
	return false
}

// IsActionHeld reports whether any keybinding for the action is held down.
func (km *KeybindingManager) IsActionHeld(action string) bool {
	for _, combination := range km.combinations[action] {
		if ebiten.IsKeyPressed(combination.Key) && combination.modifiersMatch(ebiten.IsKeyPressed) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action using the InputActions interface
func (km *KeybindingManager) ExecuteAction(action string, inputActions InputActions) bool {
	if !km.CheckAction(action) {
		return false
	}
	return globalActionExecutor.ExecuteAction(action, inputActions)
}

// GetKeybindings returns the current keybindings map (for display purposes)
func (km *KeybindingManager) GetKeybindings() map[string][]string {
	return km.keybindings
}

// UpdateKeybindings replaces the keybindings map
func (km *KeybindingManager) UpdateKeybindings(keybindings map[string][]string) {
	km.keybindings = keybindings
	km.combinations = make(map[string][]KeyCombination, len(keybindings))
	for action, keys := range keybindings {
		for _, keyStr := range keys {
			combination, err := parseKeyString(keyStr)
			if err != nil {
				debugLog("Skipping keybinding %q for %s: %v", keyStr, action, err)
				continue
			}
			km.combinations[action] = append(km.combinations[action], combination)
		}
	}
}
