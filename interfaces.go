package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// Overlay message display duration
	overlayMessageDuration = 2 * time.Second
)

// SurfacePhase is the viewer surface's lifecycle phase.
type SurfacePhase int

const (
	SurfaceClosed SurfacePhase = iota
	SurfaceLoading
	SurfaceReady
)

// Control identifies the surface control holding keyboard focus.
type Control int

const (
	ControlNone Control = iota
	ControlDismiss
)

// ViewerFrame is the per-tick snapshot the renderer consumes to draw
// the modal viewer. Current may be nil while a load is in flight;
// Previous keeps the outgoing image alive for the crossfade.
type ViewerFrame struct {
	Open           bool
	Closing        bool
	Phase          SurfacePhase
	Photo          *Photo
	Current        *ebiten.Image
	Previous       *ebiten.Image
	FadeAlpha      float64
	PanelVisible   bool
	FocusedControl Control
	IndexLabel     string
	SpinnerTick    int
}

// GridFrame is the renderer's snapshot of the gallery grid. Thumbs is
// index-aligned with Photos; nil entries are still loading.
type GridFrame struct {
	Photos   []*Photo
	Thumbs   []*ebiten.Image
	Selected int
	Columns  int
	FirstRow int
	Title    string
}

// RenderState provides read-only access to application state for the renderer
type RenderState interface {
	IsFullscreen() bool

	// UI state
	IsShowingHelp() bool
	IsInPhotoInputMode() bool
	GetPhotoInputBuffer() string
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time

	// Frames
	GetViewerFrame() ViewerFrame
	GetGridFrame() GridFrame

	// Display data
	GetFontSize() float64
	GetPanelWidth() int
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
	GetMouseSettings() MouseSettings
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Quit()

	// Display toggles
	ToggleHelp()
	ToggleInfo()
	ToggleFullscreen()

	// Viewer control
	OpenViewer()
	Dismiss()
	NavigateNext()
	NavigatePrevious()
	JumpToPhoto(number int)
	ActivateTag(ordinal int)

	// Grid control
	GridRowUp()
	GridRowDown()

	// Photo number input
	EnterPhotoInputMode()
	ExitPhotoInputMode()
	ProcessPhotoInput()
	UpdatePhotoInputBuffer(buffer string)

	// Source operations
	SaveCopy()
	CycleSortMethod()
	Refresh()

	// Messages
	ShowOverlayMessage(message string)

	// Common data access
	GetCurrentIndex() int
	GetTotalCount() int
}

// InputState provides read-only access to input-related state
type InputState interface {
	IsInPhotoInputMode() bool
	GetPhotoInputBuffer() string
	IsViewerOpen() bool
	IsPanelVisible() bool
}
