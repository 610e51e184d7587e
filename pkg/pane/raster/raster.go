// Package raster implements the image pane on an in-memory raster using
// github.com/fogleman/gg.
//
// A [Window] plays both roles of the pane contract: it is the surface the
// renderer draws on and the scroll container around it. Only the visible
// client area is backed by pixels; drawing is translated by the scroll
// offset and clipped to the client area, so a surface many times larger than
// the viewport costs nothing extra.
package raster

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/transform"
)

var (
	_ pane.Surface   = (*Window)(nil)
	_ pane.Scroller  = (*Window)(nil)
	_ pane.Annotator = (*Window)(nil)
)

// Window is a scrollable raster viewport onto a logical surface.
// It is not safe for concurrent use.
type Window struct {
	dc     *gg.Context
	w, h   int // logical surface size
	sx, sy float64
}

// NewWindow creates a window whose visible client area is w by h pixels.
func NewWindow(w, h int) *Window {
	w, h = max(w, 1), max(h, 1)
	win := &Window{dc: gg.NewContext(w, h), w: w, h: h}
	win.dc.SetColor(color.White)
	win.dc.Clear()
	return win
}

// SetClientSize resizes the visible area, discarding its pixels.
func (win *Window) SetClientSize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if w == win.dc.Width() && h == win.dc.Height() {
		return
	}
	win.dc = gg.NewContext(w, h)
	win.dc.SetColor(color.White)
	win.dc.Clear()
	win.clampScroll()
}

// ClientSize implements pane.Scroller.
func (win *Window) ClientSize() transform.Size {
	return transform.Size{Width: float64(win.dc.Width()), Height: float64(win.dc.Height())}
}

// Resize implements pane.Surface. It changes the logical surface size and
// re-clamps the scroll offset.
func (win *Window) Resize(w, h int) {
	win.w, win.h = max(w, 0), max(h, 0)
	win.clampScroll()
}

// Size implements pane.Surface.
func (win *Window) Size() (int, int) { return win.w, win.h }

// ScrollTo implements pane.Scroller. The offset is clamped so the client area
// stays within the surface.
func (win *Window) ScrollTo(x, y float64) {
	win.sx, win.sy = x, y
	win.clampScroll()
}

// ScrollOffset implements pane.Scroller.
func (win *Window) ScrollOffset() (float64, float64) { return win.sx, win.sy }

// Context implements pane.Surface. The returned context starts at the
// surface origin, translated by the current scroll offset.
func (win *Window) Context() pane.Context {
	win.dc.Identity()
	win.dc.Translate(-win.sx, -win.sy)
	return ggContext{dc: win.dc}
}

// Image returns the visible client area.
func (win *Window) Image() image.Image { return win.dc.Image() }

// EncodePNG writes the visible client area as PNG.
func (win *Window) EncodePNG(w io.Writer) error { return win.dc.EncodePNG(w) }

// Annotate implements pane.Annotator. Lines are drawn in the top-left corner
// of the client area over a translucent box.
func (win *Window) Annotate(lines ...string) {
	if len(lines) == 0 {
		return
	}
	dc := win.dc
	dc.Push()
	defer dc.Pop()
	dc.Identity()
	dc.SetFontFace(basicfont.Face7x13)

	const pad, lineHeight = 6.0, 15.0
	width := 0.0
	for _, l := range lines {
		w, _ := dc.MeasureString(l)
		width = math.Max(width, w)
	}
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRectangle(0, 0, width+2*pad, float64(len(lines))*lineHeight+2*pad)
	dc.Fill()
	dc.SetRGB(0.8, 0.1, 0.1)
	for i, l := range lines {
		dc.DrawString(l, pad, pad+float64(i+1)*lineHeight-3)
	}
}

func (win *Window) clampScroll() {
	maxX := math.Max(0, float64(win.w)-float64(win.dc.Width()))
	maxY := math.Max(0, float64(win.h)-float64(win.dc.Height()))
	win.sx = clamp(win.sx, 0, maxX)
	win.sy = clamp(win.sy, 0, maxY)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ggContext adapts a gg.Context to pane.Context.
type ggContext struct {
	dc *gg.Context
}

func (c ggContext) Save()                  { c.dc.Push() }
func (c ggContext) Restore()               { c.dc.Pop() }
func (c ggContext) Scale(s float64)        { c.dc.Scale(s, s) }
func (c ggContext) Translate(x, y float64) { c.dc.Translate(x, y) }

func (c ggContext) FillRect(x, y, w, h float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.Fill()
}

func (c ggContext) DrawImage(img image.Image, x, y float64) {
	c.dc.Push()
	c.dc.Translate(x, y)
	c.dc.DrawImage(img, 0, 0)
	c.dc.Pop()
}
