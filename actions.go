package main

import "slices"

// ActionDefinition defines an action with its default keybindings and description
type ActionDefinition struct {
	Name        string
	Keys        []string
	Step        int // held keys navigate by Step repeatedly; 0 fires once
	Description string
}

// actionDefinitions contains all action definitions with default keybindings and descriptions
var actionDefinitions = []ActionDefinition{
	{"next", []string{"ArrowRight", "KeyD", "Space"}, 1, "Next image (hold to browse)"},
	{"previous", []string{"ArrowLeft", "KeyA"}, -1, "Previous image (hold to browse)"},
	{"jump_first", []string{"Home"}, 0, "Jump to first image"},
	{"jump_last", []string{"End"}, 0, "Jump to last image"},
	{"fullscreen", []string{"KeyF"}, 0, "Toggle fullscreen"},
	{"info", []string{"KeyI"}, 0, "Show/hide info display"},
	{"help", []string{"Shift+Slash"}, 0, "Show/hide help"},
	{"exit", []string{"Escape", "KeyQ"}, 0, "Quit application"},
}

// ActionExecutor runs single-shot actions against the game.
type ActionExecutor struct{}

func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction executes the given action using the InputActions interface.
// Repeating navigation actions are handled by InputState, not here.
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "jump_first":
		inputActions.JumpFirst()
	case "jump_last":
		inputActions.JumpLast()
	default:
		return false
	}
	return true
}

var globalActionExecutor = NewActionExecutor()

// actionNames returns action names in help display order.
func actionNames() []string {
	names := make([]string, 0, len(actionDefinitions))
	for _, action := range actionDefinitions {
		names = append(names, action.Name)
	}
	return names
}

// repeatActions returns the actions that keep navigating while held.
func repeatActions() []ActionDefinition {
	var actions []ActionDefinition
	for _, action := range actionDefinitions {
		if action.Step != 0 {
			actions = append(actions, action)
		}
	}
	return actions
}

func isKnownAction(name string) bool {
	return slices.Contains(actionNames(), name)
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = slices.Clone(action.Keys)
	}
	return keybindings
}
