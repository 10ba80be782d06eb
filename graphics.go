package main

import (
	"bytes"
	"image/color"
	"math"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Common colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorGray      = color.RGBA{180, 180, 180, 255}
	colorLightGray = color.RGBA{192, 192, 192, 255}
	colorYellow    = color.RGBA{255, 255, 100, 255}
	colorCyan      = color.RGBA{100, 255, 255, 255}
	colorLightBlue = color.RGBA{200, 200, 255, 255}
	colorGreen     = color.RGBA{100, 255, 100, 255}
	colorOrange    = color.RGBA{255, 200, 100, 255}
	colorLightRed  = color.RGBA{255, 150, 150, 255}

	// Background colors for semi-transparent overlays
	bgColorLight  = color.RGBA{0, 0, 0, 128}
	bgColorMedium = color.RGBA{0, 0, 0, 160}
	bgColorDark   = color.RGBA{0, 0, 0, 200}

	// Grid chrome
	gridTileBg     = color.RGBA{28, 28, 32, 255}
	gridSelectRing = color.RGBA{255, 255, 255, 255}
)

// Global font source, shared by the renderer, the metadata panel and
// error tile generation.
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// scaleAlpha returns c with every channel scaled by factor, keeping the
// premultiplied-alpha invariant.
func scaleAlpha(c color.RGBA, factor float64) color.RGBA {
	if factor >= 1 {
		return c
	}
	if factor < 0 {
		factor = 0
	}
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: uint8(float64(c.A) * factor),
	}
}

// DrawSpinner draws the indeterminate loading indicator: a ring of dots
// whose brightness rotates with tick. Ebitengine runs Update at 60 TPS,
// so a full revolution takes about a second.
func DrawSpinner(screen *ebiten.Image, cx, cy float64, tick int) {
	const (
		dots   = 8
		radius = 22.0
		dotR   = 4.0
	)
	phase := tick / 8 % dots
	for i := 0; i < dots; i++ {
		angle := 2 * math.Pi * float64(i) / dots
		x := cx + radius*math.Cos(angle)
		y := cy + radius*math.Sin(angle)

		// Trail fades behind the leading dot.
		dist := (i - phase + dots) % dots
		alpha := uint8(255 - dist*26)
		c := color.RGBA{alpha, alpha, alpha, alpha}
		vector.DrawFilledCircle(screen, float32(x), float32(y), dotR, c, true)
	}
}

// CreateErrorImage creates an error placeholder image with filename and error message
func CreateErrorImage(width, height int, filename, errorMsg string) *ebiten.Image {
	// Default size if not specified
	if width <= 0 || height <= 0 {
		width, height = 400, 300
	}

	errorImg := ebiten.NewImage(width, height)
	errorImg.Fill(color.RGBA{120, 30, 30, 255})

	// White border
	DrawFilledRect(errorImg, 0, 0, float64(width), 3, colorWhite)
	DrawFilledRect(errorImg, 0, float64(height-3), float64(width), 3, colorWhite)
	DrawFilledRect(errorImg, 0, 0, 3, float64(height), colorWhite)
	DrawFilledRect(errorImg, float64(width-3), 0, 3, float64(height), colorWhite)

	if globalFontSource == nil {
		// Font init failed; the bordered rectangle alone still signals
		// the failure.
		return errorImg
	}

	errorFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   20.0,
	}

	fileText := "File: " + filepath.Base(filename)
	reasonText := "Reason: " + errorMsg

	// Truncate long text to fit within image bounds
	maxChars := (width - 20) / 10 // Rough estimate: 10px per character
	if len(fileText) > maxChars && maxChars > 3 {
		fileText = fileText[:maxChars-3] + "..."
	}
	if len(reasonText) > maxChars && maxChars > 3 {
		reasonText = reasonText[:maxChars-3] + "..."
	}

	DrawText(errorImg, "ERROR", errorFont, 10, 30, colorWhite)
	DrawText(errorImg, fileText, errorFont, 10, 60, colorWhite)
	DrawText(errorImg, reasonText, errorFont, 10, 90, colorWhite)

	return errorImg
}
