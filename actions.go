package main

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions with default
// bindings and descriptions. Escape is deliberately absent: it runs the
// two-stage dismissal in the input handler, ahead of these bindings.
var actionDefinitions = []ActionDefinition{
	{"quit", []string{"KeyQ"}, []string{}, "Quit"},
	{"help", []string{"Shift+Slash"}, []string{"Alt+RightClick"}, "Show/hide help"},
	{"open_viewer", []string{"Enter", "NumpadEnter"}, []string{"DoubleLeftClick"}, "Open selected photo"},
	{"next", []string{"ArrowRight", "Space"}, []string{"WheelDown"}, "Next photo"},
	{"previous", []string{"ArrowLeft", "Backspace"}, []string{"WheelUp"}, "Previous photo"},
	{"row_up", []string{"ArrowUp"}, []string{}, "Grid row up"},
	{"row_down", []string{"ArrowDown"}, []string{}, "Grid row down"},
	{"toggle_info", []string{"KeyI"}, []string{"MiddleClick"}, "Show/hide photo details"},
	{"fullscreen", []string{"KeyF"}, []string{}, "Toggle fullscreen"},
	{"photo_input", []string{"KeyG"}, []string{"Ctrl+LeftClick"}, "Go to photo (enter number)"},
	{"jump_first", []string{"Home"}, []string{}, "Jump to first photo"},
	{"jump_last", []string{"End"}, []string{}, "Jump to last photo"},
	{"save_copy", []string{"KeyS"}, []string{}, "Save a copy of the current photo"},
	{"cycle_sort", []string{"Shift+KeyS"}, []string{"Alt+MiddleClick"}, "Cycle sort order (Capture/Title/Entry)"},
	{"refresh", []string{"KeyR"}, []string{}, "Rescan the photo source"},
}

// ActionExecutor provides centralized action execution logic shared by
// the keyboard and mouse binding managers.
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction executes the given action using the InputActions interface
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	switch action {
	case "quit":
		inputActions.Quit()
	case "help":
		inputActions.ToggleHelp()
	case "open_viewer":
		inputActions.OpenViewer()
	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "row_up":
		inputActions.GridRowUp()
	case "row_down":
		inputActions.GridRowDown()
	case "toggle_info":
		inputActions.ToggleInfo()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "photo_input":
		if !inputState.IsInPhotoInputMode() {
			inputActions.EnterPhotoInputMode()
		}
	case "jump_first":
		inputActions.JumpToPhoto(1)
	case "jump_last":
		total := inputActions.GetTotalCount()
		if total > 0 {
			inputActions.JumpToPhoto(total)
		}
	case "save_copy":
		inputActions.SaveCopy()
	case "cycle_sort":
		inputActions.CycleSortMethod()
	case "refresh":
		inputActions.Refresh()
	default:
		return false
	}

	return true
}

// globalActionExecutor is shared by the keyboard and mouse binding managers
var globalActionExecutor = NewActionExecutor()

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
		keybindings[action.Name] = action.Keys
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = action.MouseActions
	}
	return mousebindings
}
