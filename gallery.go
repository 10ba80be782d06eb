package main

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Grid geometry constants. Tile size derives from the window width and
// the configured column count; these are the fixed parts.
const (
	gridPadding  = 16
	gridGap      = 12
	gridHeaderH  = 48
	thumbAspectW = 4
	thumbAspectH = 3
	errorThumbW  = 320
	errorThumbH  = 240
)

// Gallery is the thumbnail grid the viewer opens from. It owns the
// browse sequence, the selection, vertical scrolling and thumbnail
// bookkeeping. Thumbs are index-aligned with photos; nil entries have
// not finished loading.
type Gallery struct {
	loader *Loader

	photos    []*Photo
	thumbs    []*ebiten.Image
	requested []bool
	selected  int
	firstRow  int
	columns   int
	title     string
}

// NewGallery creates an empty grid with the given column count.
func NewGallery(loader *Loader, columns int) *Gallery {
	if columns < 1 {
		columns = 1
	}
	return &Gallery{loader: loader, columns: columns}
}

// SetPhotos replaces the grid contents and resets selection and scroll.
// Thumbnails already cached by the loader resolve immediately on the
// next Update; the rest are requested lazily as rows scroll into view.
func (g *Gallery) SetPhotos(photos []*Photo, title string) {
	g.photos = photos
	g.thumbs = make([]*ebiten.Image, len(photos))
	g.requested = make([]bool, len(photos))
	g.selected = 0
	g.firstRow = 0
	g.title = title
}

// Photos returns the current browse sequence in grid order.
func (g *Gallery) Photos() []*Photo {
	return g.photos
}

// Selected returns the selected index, or -1 for an empty grid.
func (g *Gallery) Selected() int {
	if len(g.photos) == 0 {
		return -1
	}
	return g.selected
}

// Title returns the grid heading.
func (g *Gallery) Title() string {
	return g.title
}

// Len returns the photo count.
func (g *Gallery) Len() int {
	return len(g.photos)
}

// Select moves the selection, clamped to the sequence.
func (g *Gallery) Select(index int) {
	if len(g.photos) == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(g.photos) {
		index = len(g.photos) - 1
	}
	g.selected = index
}

// MoveSelection shifts the selection by delta, clamped.
func (g *Gallery) MoveSelection(delta int) {
	g.Select(g.selected + delta)
}

// RowUp moves the selection one grid row up.
func (g *Gallery) RowUp() {
	if g.selected >= g.columns {
		g.Select(g.selected - g.columns)
	}
}

// RowDown moves the selection one grid row down, clamping into the
// (possibly partial) last row.
func (g *Gallery) RowDown() {
	if len(g.photos) == 0 {
		return
	}
	target := g.selected + g.columns
	if target >= len(g.photos) {
		target = len(g.photos) - 1
		if target/g.columns == g.selected/g.columns {
			return // already on the last row
		}
	}
	g.Select(target)
}

// Update requests thumbnails for the rows in and around the viewport
// and keeps the selection scrolled into view.
func (g *Gallery) Update(screenW, screenH int) {
	if len(g.photos) == 0 {
		return
	}

	rows := g.visibleRows(screenW, screenH)
	g.scrollToSelection(rows)

	// One row of lookahead above and below the viewport.
	start := (g.firstRow - 1) * g.columns
	end := (g.firstRow + rows + 1) * g.columns
	if start < 0 {
		start = 0
	}
	if end > len(g.photos) {
		end = len(g.photos)
	}
	for i := start; i < end; i++ {
		g.requestThumb(i)
	}
}

// requestThumb asks the loader for tile i. A request dropped by a full
// queue leaves requested[i] unset, so the next Update retries it.
func (g *Gallery) requestThumb(i int) {
	if g.thumbs[i] != nil || g.requested[i] {
		return
	}
	if img, ok := g.loader.Cached(g.photos[i], true); ok {
		g.thumbs[i] = img
		return
	}
	g.requested[i] = g.loader.Request(LoadRequest{Photo: g.photos[i], Thumb: true})
}

// HandleThumbResult applies one completed thumbnail load. Failed loads
// get an error tile so the grid cell is not a permanent hole. Results
// for photos no longer in the grid are dropped.
func (g *Gallery) HandleThumbResult(res LoadResult) {
	for i, p := range g.photos {
		if p.ID != res.PhotoID {
			continue
		}
		if res.Err != nil {
			g.thumbs[i] = CreateErrorImage(errorThumbW, errorThumbH, p.DisplayTitle(), res.Err.Error())
		} else {
			g.thumbs[i] = res.Image
		}
		return
	}
}

// scrollToSelection adjusts firstRow so the selected tile is visible.
func (g *Gallery) scrollToSelection(visibleRows int) {
	if visibleRows < 1 {
		visibleRows = 1
	}
	row := g.selected / g.columns
	if row < g.firstRow {
		g.firstRow = row
	}
	if row >= g.firstRow+visibleRows {
		g.firstRow = row - visibleRows + 1
	}
	if g.firstRow < 0 {
		g.firstRow = 0
	}
}

// gridTileSize returns the tile dimensions for the given window width
// and column count. Shared with the renderer so hit tests and drawing
// agree on geometry.
func gridTileSize(screenW, columns int) (int, int) {
	tw := (screenW - gridPadding*2 - gridGap*(columns-1)) / columns
	if tw < 1 {
		tw = 1
	}
	return tw, tw * thumbAspectH / thumbAspectW
}

// gridTileRect returns the screen rectangle of the tile at index given
// the current scroll position, which may lie outside the viewport for
// scrolled-away rows.
func gridTileRect(index, columns, firstRow, screenW int) image.Rectangle {
	tw, th := gridTileSize(screenW, columns)
	row := index/columns - firstRow
	col := index % columns
	x := gridPadding + col*(tw+gridGap)
	y := gridHeaderH + row*(th+gridGap)
	return image.Rect(x, y, x+tw, y+th)
}

func (g *Gallery) tileRect(index, screenW int) image.Rectangle {
	return gridTileRect(index, g.columns, g.firstRow, screenW)
}

// visibleRows returns how many full rows fit below the header.
func (g *Gallery) visibleRows(screenW, screenH int) int {
	_, th := gridTileSize(screenW, g.columns)
	rows := (screenH - gridHeaderH - gridPadding) / (th + gridGap)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// HitTest maps a click position to a photo index. Returns -1 for the
// gaps, the header and anything past the last photo.
func (g *Gallery) HitTest(mx, my, screenW, screenH int) int {
	if len(g.photos) == 0 || my < gridHeaderH {
		return -1
	}
	pt := image.Pt(mx, my)
	rows := g.visibleRows(screenW, screenH)
	start := g.firstRow * g.columns
	end := (g.firstRow + rows + 1) * g.columns
	if end > len(g.photos) {
		end = len(g.photos)
	}
	for i := start; i < end; i++ {
		if pt.In(g.tileRect(i, screenW)) {
			return i
		}
	}
	return -1
}

// Frame snapshots the grid for the renderer.
func (g *Gallery) Frame() GridFrame {
	return GridFrame{
		Photos:   g.photos,
		Thumbs:   g.thumbs,
		Selected: g.Selected(),
		Columns:  g.columns,
		FirstRow: g.firstRow,
		Title:    g.title,
	}
}
