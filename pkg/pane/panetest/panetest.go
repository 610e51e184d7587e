// Package panetest provides a recording pane for tests.
//
// A Recorder implements pane.Surface, pane.Scroller and pane.Context and logs
// every call as a short string, so tests can assert the exact drawing
// sequence without rasterizing anything.
package panetest

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/transform"
)

var (
	_ pane.Surface   = (*Recorder)(nil)
	_ pane.Scroller  = (*Recorder)(nil)
	_ pane.Context   = (*Recorder)(nil)
	_ pane.Annotator = (*Recorder)(nil)
)

// Recorder records drawing operations.
type Recorder struct {
	// Names maps images to readable names in the op log. Unnamed images are
	// logged by size.
	Names map[image.Image]string

	client transform.Size
	w, h   int
	sx, sy float64
	ops    []string
	frames int
}

// NewRecorder creates a recorder whose client area is w by h.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{
		Names:  map[image.Image]string{},
		client: transform.Size{Width: w, Height: h},
	}
}

// Ops returns the recorded operations.
func (r *Recorder) Ops() []string { return append([]string(nil), r.ops...) }

// Clear forgets the recorded operations.
func (r *Recorder) Clear() { r.ops = nil }

// Frames returns how many times the surface was resized, which the renderer
// does exactly once per rendered frame.
func (r *Recorder) Frames() int { return r.frames }

// String returns the op log, one op per line.
func (r *Recorder) String() string { return strings.Join(r.ops, "\n") }

// SetClientSize changes the client area, as a window resize would.
func (r *Recorder) SetClientSize(w, h float64) {
	r.client = transform.Size{Width: w, Height: h}
}

func (r *Recorder) logf(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

// Resize implements pane.Surface.
func (r *Recorder) Resize(w, h int) {
	r.w, r.h = w, h
	r.frames++
	r.logf("resize %dx%d", w, h)
}

// Size implements pane.Surface.
func (r *Recorder) Size() (int, int) { return r.w, r.h }

// Context implements pane.Surface.
func (r *Recorder) Context() pane.Context { return r }

// ScrollTo implements pane.Scroller. Offsets are recorded unclamped.
func (r *Recorder) ScrollTo(x, y float64) {
	r.sx, r.sy = x, y
	r.logf("scroll %.2f,%.2f", x, y)
}

// ScrollOffset implements pane.Scroller.
func (r *Recorder) ScrollOffset() (float64, float64) { return r.sx, r.sy }

// ClientSize implements pane.Scroller.
func (r *Recorder) ClientSize() transform.Size { return r.client }

// Save implements pane.Context.
func (r *Recorder) Save() { r.logf("save") }

// Restore implements pane.Context.
func (r *Recorder) Restore() { r.logf("restore") }

// Scale implements pane.Context.
func (r *Recorder) Scale(s float64) { r.logf("scale %.4f", s) }

// Translate implements pane.Context.
func (r *Recorder) Translate(x, y float64) { r.logf("translate %.2f,%.2f", x, y) }

// FillRect implements pane.Context.
func (r *Recorder) FillRect(x, y, w, h float64, c color.Color) {
	cr, cg, cb, _ := c.RGBA()
	r.logf("fill %.0f,%.0f %.0fx%.0f #%02x%02x%02x", x, y, w, h, cr>>8, cg>>8, cb>>8)
}

// DrawImage implements pane.Context.
func (r *Recorder) DrawImage(img image.Image, x, y float64) {
	r.logf("image %s at %.0f,%.0f", r.name(img), x, y)
}

// Annotate implements pane.Annotator.
func (r *Recorder) Annotate(lines ...string) {
	r.logf("annotate %s", strings.Join(lines, "; "))
}

func (r *Recorder) name(img image.Image) string {
	if n, ok := r.Names[img]; ok {
		return n
	}
	b := img.Bounds()
	return fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
}

// Pages is an in-memory pane.Pages.
type Pages []image.Image

// Len implements pane.Pages.
func (p Pages) Len() int { return len(p) }

// Page implements pane.Pages.
func (p Pages) Page(i int) (image.Image, bool) {
	if i < 0 || i >= len(p) || p[i] == nil {
		return nil, false
	}
	return p[i], true
}

// Blank returns a uniform image of size w by h.
func Blank(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img
}
