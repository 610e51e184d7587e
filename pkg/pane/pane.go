package pane

import (
	"image"
	"image/color"

	"github.com/matzehuels/papersync/pkg/transform"
)

// Context is an immediate-mode 2D drawing context.
// Scale and Translate compose with the current transform; Save and Restore
// push and pop it.
type Context interface {
	Save()
	Restore()
	Scale(s float64)
	Translate(x, y float64)
	FillRect(x, y, w, h float64, c color.Color)
	DrawImage(img image.Image, x, y float64)
}

// Surface is a drawing surface with a resizable logical size.
type Surface interface {
	Resize(w, h int)
	Size() (w, h int)
	Context() Context
}

// Scroller is the scrollable container showing part of a Surface.
type Scroller interface {
	ScrollTo(x, y float64)
	ScrollOffset() (x, y float64)
	ClientSize() transform.Size
}

// Annotator is implemented by surfaces that can overlay diagnostic text on
// the visible area.
type Annotator interface {
	Annotate(lines ...string)
}

// Pages gives the renderer read access to decoded page images.
type Pages interface {
	Len() int
	Page(i int) (image.Image, bool)
}

// PageSize returns the pixel size of img.
func PageSize(img image.Image) transform.Size {
	b := img.Bounds()
	return transform.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}
