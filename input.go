package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler processes keyboard and mouse input. Bindings are
// dispatched generically; two inputs are handled ahead of the binding
// managers because they depend on state the managers cannot see:
//
//   - Escape runs the two-stage dismissal (metadata panel first, then
//     the viewer, then the application),
//   - digit keys activate collection tags while the panel is visible,
//     and edit the buffer while photo-number input is active.
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
}

// NewInputHandler creates a new InputHandler. Either manager may be
// nil, degrading to keyboard-only or mouse-only interaction.
func NewInputHandler(inputActions InputActions, inputState InputState, km *KeybindingManager, mm *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   km,
		mousebindingManager: mm,
	}
}

// HandleInput processes all input for the current frame.
// Returns true if any input was processed, false otherwise.
func (h *InputHandler) HandleInput() bool {
	if h.handlePhotoInputMode() {
		return true
	}
	if h.handleEscape() {
		return true
	}

	inputProcessed := h.handleTagOrdinals()

	for _, def := range actionDefinitions {
		if h.keybindingManager != nil && h.keybindingManager.ExecuteAction(def.Name, h.inputActions, h.inputState) {
			inputProcessed = true
		}
		if h.mousebindingManager != nil && h.mousebindingManager.ExecuteAction(def.Name, h.inputActions, h.inputState) {
			inputProcessed = true
		}
	}

	return inputProcessed
}

// handleEscape implements the two-stage dismissal policy: one press
// never skips from "panel open" straight to "viewer closed".
func (h *InputHandler) handleEscape() bool {
	if !inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return false
	}
	h.inputActions.Dismiss()
	return true
}

// handleTagOrdinals maps 1..9 to the panel's collection tag links.
func (h *InputHandler) handleTagOrdinals() bool {
	if !h.inputState.IsViewerOpen() || !h.inputState.IsPanelVisible() {
		return false
	}
	for i := 0; i < 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.Key1+ebiten.Key(i)) ||
			inpututil.IsKeyJustPressed(ebiten.KeyNumpad1+ebiten.Key(i)) {
			h.inputActions.ActivateTag(i + 1)
			return true
		}
	}
	return false
}

// handlePhotoInputMode owns all keys while the go-to-photo prompt is up.
func (h *InputHandler) handlePhotoInputMode() bool {
	if !h.inputState.IsInPhotoInputMode() {
		return false
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.inputActions.ExitPhotoInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		h.inputActions.ProcessPhotoInput()
		h.inputActions.ExitPhotoInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		currentBuffer := h.inputState.GetPhotoInputBuffer()
		if len(currentBuffer) > 0 {
			h.inputActions.UpdatePhotoInputBuffer(currentBuffer[:len(currentBuffer)-1])
		}
		return true
	}

	var digit string
	if digit = h.checkDigitKeys(ebiten.Key0, ebiten.Key9, '0'); digit == "" {
		digit = h.checkDigitKeys(ebiten.KeyNumpad0, ebiten.KeyNumpad9, '0')
	}
	if digit != "" {
		h.inputActions.UpdatePhotoInputBuffer(h.inputState.GetPhotoInputBuffer() + digit)
		return true
	}

	// Swallow everything else so bindings can't fire mid-entry.
	return true
}

func (h *InputHandler) checkDigitKeys(startKey, endKey ebiten.Key, baseChar rune) string {
	for key := startKey; key <= endKey; key++ {
		if inpututil.IsKeyJustPressed(key) {
			return string(baseChar + rune(key-startKey))
		}
	}
	return ""
}
