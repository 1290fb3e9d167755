package main

import "time"

// InputHandler handles all keyboard input processing
type InputHandler struct {
	inputActions      InputActions
	inputState        *InputState
	keybindingManager *KeybindingManager
	now               func() time.Time
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState *InputState, keybindingManager *KeybindingManager) *InputHandler {
	return &InputHandler{
		inputActions:      inputActions,
		inputState:        inputState,
		keybindingManager: keybindingManager,
		now:               time.Now,
	}
}

// HandleInput processes all input for the current frame
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	inputProcessed := h.handleExitKeys()
	if h.inputActions.GetTotalImagesCount() == 0 {
		return inputProcessed
	}

	inputProcessed = h.handleToggleKeys() || inputProcessed
	inputProcessed = h.handleNavigationKeys() || inputProcessed

	return inputProcessed
}

func (h *InputHandler) handleExitKeys() bool {
	return h.keybindingManager.ExecuteAction("exit", h.inputActions)
}

func (h *InputHandler) handleToggleKeys() bool {
	inputProcessed := false
	for _, action := range []string{"help", "info", "fullscreen"} {
		if h.keybindingManager.ExecuteAction(action, h.inputActions) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

func (h *InputHandler) handleNavigationKeys() bool {
	inputProcessed := false

	if h.keybindingManager.ExecuteAction("jump_first", h.inputActions) {
		inputProcessed = true
	}
	if h.keybindingManager.ExecuteAction("jump_last", h.inputActions) {
		inputProcessed = true
	}

	now := h.now()
	for _, action := range repeatActions() {
		h.inputState.SetHeld(action.Step, h.keybindingManager.IsActionHeld(action.Name), now)
	}

	return h.applyNavigation(now) || inputProcessed
}

// applyNavigation forwards the delta due at now, if any, to the game.
func (h *InputHandler) applyNavigation(now time.Time) bool {
	delta, ok := h.inputState.Process(now)
	if !ok {
		return false
	}
	h.inputActions.Navigate(delta)
	return true
}
