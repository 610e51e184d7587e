package locate

import (
	"fmt"

	"github.com/matzehuels/papersync/pkg/errors"
)

// Phase classifies the eye level relative to the blocks.
type Phase int

const (
	// Inside means the eye level falls within a block.
	Inside Phase = iota
	// AboveFirst means the eye level is above the first block.
	AboveFirst
	// BelowLast means the eye level is below the last block.
	BelowLast
	// Between means the eye level falls in the gap after Position.Block.
	Between
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case Inside:
		return "inside"
	case AboveFirst:
		return "above-first"
	case BelowLast:
		return "below-last"
	case Between:
		return "between"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Position is a resolved reading position.
type Position struct {
	// Block is the block index. For Between it is the earlier block of the gap.
	Block int
	Phase Phase
	// Rate is the fraction of the way through the block (Inside) or gap
	// (Between). It is 0 for AboveFirst and 1 for BelowLast.
	Rate float64
}

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("%s block=%d rate=%.3f", p.Phase, p.Block, p.Rate)
}

// Span is the vertical extent of a block in pane coordinates.
type Span struct {
	Top    float64
	Bottom float64
}

// Height returns the span's height.
func (s Span) Height() float64 { return s.Bottom - s.Top }

// Contains reports whether y falls within the span, bounds included.
func (s Span) Contains(y float64) bool { return s.Top <= y && y <= s.Bottom }

// LayoutRect is the capability a layout collaborator exposes for each
// transcript block: its laid-out extent and its address attribute.
// Top and Bottom are in the text pane's content coordinates.
type LayoutRect interface {
	Top() float64
	Bottom() float64
	Address() string
}

// Locate returns the reading position of reference among spans.
// Spans must be in document order and must not overlap.
// It fails with errors.ErrCodeNoMatch when spans is empty or no span
// satisfies any phase condition.
func Locate(spans []Span, reference float64) (Position, error) {
	n := len(spans)
	if n == 0 {
		return Position{}, errors.New(errors.ErrCodeNoMatch, "no blocks to locate against")
	}

	for i, s := range spans {
		if s.Contains(reference) {
			// A shared edge at the reference belongs to the later block.
			if reference == s.Bottom && i+1 < n && spans[i+1].Contains(reference) {
				continue
			}
			return Position{Block: i, Phase: Inside, Rate: fraction(reference-s.Top, s.Height())}, nil
		}

		if reference <= s.Top && (i == 0 || spans[i-1].Bottom <= reference) {
			if i == 0 {
				return Position{Block: 0, Phase: AboveFirst, Rate: 0}, nil
			}
			prevBottom := spans[i-1].Bottom
			return Position{
				Block: i - 1,
				Phase: Between,
				Rate:  fraction(reference-prevBottom, s.Top-prevBottom),
			}, nil
		}

		if s.Bottom <= reference && (i == n-1 || reference <= spans[i+1].Top) {
			// The next block's top edge is inside it, not in the gap.
			if i+1 < n && spans[i+1].Contains(reference) {
				continue
			}
			if i == n-1 {
				return Position{Block: i, Phase: BelowLast, Rate: 1}, nil
			}
			nextTop := spans[i+1].Top
			return Position{
				Block: i,
				Phase: Between,
				Rate:  fraction(reference-s.Bottom, nextTop-s.Bottom),
			}, nil
		}
	}

	return Position{}, errors.New(errors.ErrCodeNoMatch, "reference %v matches no block", reference)
}

// Spans converts layout rects to pane coordinates by subtracting the pane's
// scroll offset.
func Spans(rects []LayoutRect, scrollTop float64) []Span {
	out := make([]Span, len(rects))
	for i, r := range rects {
		out[i] = Span{Top: r.Top() - scrollTop, Bottom: r.Bottom() - scrollTop}
	}
	return out
}

// LocateRects locates reference among rects as seen through a pane
// scrolled to scrollTop.
func LocateRects(rects []LayoutRect, scrollTop, reference float64) (Position, error) {
	return Locate(Spans(rects, scrollTop), reference)
}

// EyeLevel returns the reference height of a pane showing [top, bottom]:
// one third of the way down, weighting the upper part of the view.
func EyeLevel(top, bottom float64) float64 {
	return (2.0/3.0)*top + (1.0/3.0)*bottom
}

// fraction returns num/den clamped to [0,1], or 0 when den is not positive.
func fraction(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	r := num / den
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
