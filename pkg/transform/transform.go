package transform

import (
	"fmt"
	"math"

	"github.com/matzehuels/papersync/pkg/errors"
)

const (
	// PadRate is the horizontal padding, as a fraction of the region width,
	// left of the framed region.
	PadRate = 0.05

	// ZoomDivisor scales the region width to the width that fills the
	// viewport; the surplus over 1 is the padding around the region.
	ZoomDivisor = 1.2
)

// Size is a width and height in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Region is an axis-aligned box in source page pixels.
type Region struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Bottom returns the region's bottom edge.
func (r Region) Bottom() float64 { return r.Top + r.Height }

// Transform is a zoom and pan applied to a page image.
type Transform struct {
	Zoom float64
	PanX float64
	PanY float64
}

// String implements fmt.Stringer.
func (t Transform) String() string {
	return fmt.Sprintf("zoom=%.4f pan=(%.2f,%.2f)", t.Zoom, t.PanX, t.PanY)
}

// Rebase shifts the transform's vertical pan by dy source pixels.
// Rebasing by a page height re-expresses a transform of the page below the
// primary page in the primary page's coordinates.
func (t Transform) Rebase(dy float64) Transform {
	t.PanY += dy
	return t
}

// Option configures Solve.
type Option func(*solver)

type solver struct {
	header float64
}

// WithHeaderHeight sets the height of the fixed header that occupies the top
// of the text pane but is not mirrored on the image pane. The reference
// height is shifted up by h before it is converted to source pixels.
func WithHeaderHeight(h float64) Option {
	return func(s *solver) { s.header = h }
}

// Solve computes the transform that frames target within viewport.
//
// The zoom is viewport.Width / (ZoomDivisor * target.Width). The horizontal
// pan leaves PadRate of the region width left of it. The vertical pan puts the
// point edgeRate of the way down the region at the reference height, after
// subtracting the header height. edgeRate is clamped to [0,1].
//
// page is the size of the image the region belongs to; it only takes part in
// validation. Solve fails with errors.ErrCodeDegenerateRegion when the
// viewport or target width is not a positive finite number.
func Solve(page, viewport Size, target Region, reference, edgeRate float64, opts ...Option) (Transform, error) {
	s := solver{}
	for _, opt := range opts {
		opt(&s)
	}

	if !positive(viewport.Width) {
		return Transform{}, errors.New(errors.ErrCodeDegenerateRegion, "viewport width %v", viewport.Width)
	}
	if !positive(target.Width) {
		return Transform{}, errors.New(errors.ErrCodeDegenerateRegion, "target width %v", target.Width)
	}
	if !finite(target.Left, target.Top, target.Height, reference, edgeRate, s.header) {
		return Transform{}, errors.New(errors.ErrCodeDegenerateRegion, "non-finite solve input")
	}
	if page.Width < 0 || page.Height < 0 {
		return Transform{}, errors.New(errors.ErrCodeDegenerateRegion, "negative page size %vx%v", page.Width, page.Height)
	}

	edgeRate = clamp01(edgeRate)
	zoom := viewport.Width / (ZoomDivisor * target.Width)
	return Transform{
		Zoom: zoom,
		PanX: target.Left - PadRate*target.Width,
		PanY: target.Top + edgeRate*target.Height - (reference-s.header)/zoom,
	}, nil
}

// Blend linearly interpolates between t0 and t1:
//
//	(1-rate)*t0 + rate*t1
//
// rate is clamped to [0,1]. The endpoints are returned unchanged so that
// Blend(t0, t1, 0) == t0 and Blend(t0, t1, 1) == t1 hold exactly.
func Blend(t0, t1 Transform, rate float64) Transform {
	rate = clamp01(rate)
	switch {
	case rate == 0 || t0 == t1:
		return t0
	case rate == 1:
		return t1
	}
	return Transform{
		Zoom: lerp(t0.Zoom, t1.Zoom, rate),
		PanX: lerp(t0.PanX, t1.PanX, rate),
		PanY: lerp(t0.PanY, t1.PanY, rate),
	}
}

func lerp(a, b, r float64) float64 {
	return (1-r)*a + r*b
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
