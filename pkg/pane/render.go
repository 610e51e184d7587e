package pane

import (
	"image/color"
	"math"

	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/transform"
)

// DefaultMultiple is the surface size as a multiple of the zoomed page size.
// One page of headroom on every side leaves room for the neighbouring pages
// and for pans that reach past the page edge.
const DefaultMultiple = 3

// MaxSurfaceSide bounds the surface's width and height. Regions narrow
// enough to need more are rejected as degenerate.
const MaxSurfaceSide = 1 << 30

// Option configures a Renderer.
type Option func(*Renderer)

// WithMultiple sets the surface size multiple (default DefaultMultiple).
// Values below 1 are ignored.
func WithMultiple(m float64) Option {
	return func(r *Renderer) {
		if m >= 1 {
			r.multiple = m
		}
	}
}

// WithBackground sets the clear color (default white).
func WithBackground(c color.Color) Option {
	return func(r *Renderer) { r.background = c }
}

// WithAdjacentPages controls whether the pages before and after the primary
// page are drawn (default true).
func WithAdjacentPages(on bool) Option {
	return func(r *Renderer) { r.adjacent = on }
}

// Renderer draws transforms of page images onto a surface inside a
// scrollable pane. It is not safe for concurrent use.
type Renderer struct {
	surface  Surface
	scroller Scroller
	pages    Pages

	multiple   float64
	background color.Color
	adjacent   bool
}

// NewRenderer creates a renderer drawing pages onto surface, scrolled by scroller.
func NewRenderer(surface Surface, scroller Scroller, pages Pages, opts ...Option) *Renderer {
	r := &Renderer{
		surface:    surface,
		scroller:   scroller,
		pages:      pages,
		multiple:   DefaultMultiple,
		background: color.White,
		adjacent:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Viewport returns the client size of the pane.
func (r *Renderer) Viewport() transform.Size {
	return r.scroller.ClientSize()
}

// Render draws page primary under transform t.
//
// The surface is sized to the multiple (3 by default) of the page after
// zooming, not of the page image, so the neighbouring pages stay on it at
// any zoom.
//
// It fails with errors.ErrCodePageNotFound when the page is not available and
// with errors.ErrCodeDegenerateRegion when t has no positive zoom or the
// surface would exceed MaxSurfaceSide. On error the surface and scroll
// offset are left untouched.
func (r *Renderer) Render(t transform.Transform, primary int) error {
	img, ok := r.pages.Page(primary)
	if !ok {
		return errors.New(errors.ErrCodePageNotFound, "page %d of %d", primary, r.pages.Len())
	}
	if !(t.Zoom > 0) || math.IsInf(t.Zoom, 0) {
		return errors.New(errors.ErrCodeDegenerateRegion, "zoom %v", t.Zoom)
	}

	page := PageSize(img)
	w, h := page.Width, page.Height
	fw, fh := math.Ceil(r.multiple*w*t.Zoom), math.Ceil(r.multiple*h*t.Zoom)
	if !(fw <= MaxSurfaceSide && fh <= MaxSurfaceSide) {
		return errors.New(errors.ErrCodeDegenerateRegion, "surface %gx%g exceeds %d at zoom %v", fw, fh, MaxSurfaceSide, t.Zoom)
	}
	sw, sh := int(fw), int(fh)

	r.surface.Resize(sw, sh)
	r.scroller.ScrollTo(t.Zoom*(w+t.PanX), t.Zoom*(h+t.PanY))

	c := r.surface.Context()
	c.Save()
	defer c.Restore()

	c.FillRect(0, 0, float64(sw), float64(sh), r.background)
	c.Scale(t.Zoom)
	c.DrawImage(img, w, h)

	if !r.adjacent {
		return nil
	}
	if prev, ok := r.pages.Page(primary - 1); ok && primary > 0 {
		c.DrawImage(prev, w, h-PageSize(prev).Height)
	}
	if next, ok := r.pages.Page(primary + 1); ok {
		c.DrawImage(next, w, 2*h)
	}
	return nil
}

// Annotate overlays lines on the surface when it supports annotation.
func (r *Renderer) Annotate(lines ...string) {
	if a, ok := r.surface.(Annotator); ok {
		a.Annotate(lines...)
	}
}
