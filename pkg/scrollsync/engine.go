package scrollsync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/papersync/pkg/address"
	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/locate"
	"github.com/matzehuels/papersync/pkg/observability"
	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/transform"
)

// TextPane is the scrollable transcript the engine follows.
type TextPane interface {
	// ScrollTop is the pane's vertical scroll offset.
	ScrollTop() float64
	// ClientHeight is the pane's visible height.
	ClientHeight() float64
	// Blocks returns the transcript blocks in document order, in content
	// coordinates.
	Blocks() []locate.LayoutRect
}

// State is the engine's recompute state.
type State int

const (
	Idle State = iota
	Resolving
)

func (s State) String() string {
	if s == Resolving {
		return "resolving"
	}
	return "idle"
}

// Frame is the outcome of a successful recompute.
type Frame struct {
	// Seq counts successful recomputes, starting at 1.
	Seq uint64
	// Block is the located block's index among all text pane blocks. For
	// a Between position it is the earlier block of the gap.
	Block     int
	Position  locate.Position
	Transform transform.Transform
	// Page is the primary page the frame was rendered around.
	Page     int
	EyeLevel float64
}

func (f Frame) String() string {
	return fmt.Sprintf("#%d block=%d %s page=%d %s", f.Seq, f.Block, f.Position.Phase, f.Page, f.Transform)
}

// Engine synchronizes an image pane to a text pane.
type Engine struct {
	Logger *log.Logger

	text     TextPane
	pages    pane.Pages
	renderer *pane.Renderer
	header   float64
	overlay  bool

	addrs  map[string]parsed
	state  State
	loaded bool
	frame  Frame
}

type parsed struct {
	addr address.Address
	err  error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithHeaderHeight sets the height of the fixed header above the text
// pane. The header is part of the window but not of the image pane.
func WithHeaderHeight(h float64) Option {
	return func(e *Engine) { e.header = max(h, 0) }
}

// WithOverlay draws the position and transform onto every frame.
func WithOverlay(on bool) Option {
	return func(e *Engine) { e.overlay = on }
}

// WithImagesLoaded marks the page set as loaded from the start, for sets
// that are complete before the engine is built.
func WithImagesLoaded() Option {
	return func(e *Engine) { e.loaded = true }
}

// NewEngine creates an engine. The renderer must draw from the same page
// set as pages.
func NewEngine(text TextPane, pages pane.Pages, renderer *pane.Renderer, opts ...Option) *Engine {
	e := &Engine{
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
		text:     text,
		pages:    pages,
		renderer: renderer,
		addrs:    make(map[string]parsed),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the recompute state.
func (e *Engine) State() State { return e.state }

// Loaded reports whether the images-loaded event has been seen.
func (e *Engine) Loaded() bool { return e.loaded }

// Frame returns the last good frame and whether one exists.
func (e *Engine) Frame() (Frame, bool) { return e.frame, e.frame.Seq > 0 }

// MarkLoaded records that all page images have settled.
func (e *Engine) MarkLoaded() { e.loaded = true }

// Recompute repositions the image pane for the text pane's current scroll
// offset. On failure the previous frame is kept and returned with the
// error; errors.Skippable reports whether the failure is transient.
func (e *Engine) Recompute(ctx context.Context) (Frame, error) {
	if !e.loaded {
		observability.Sync().OnSkip(ctx, "images not loaded")
		return e.frame, errors.New(errors.ErrCodeImagesNotLoaded, "recompute before page images loaded")
	}

	e.state = Resolving
	defer func() { e.state = Idle }()

	start := time.Now()
	f, err := e.resolve()
	if err != nil {
		observability.Sync().OnRecompute(ctx, -1, "", time.Since(start), err)
		observability.Sync().OnSkip(ctx, string(errors.GetCode(err)))
		e.Logger.Debug("recompute skipped", "err", err)
		return e.frame, err
	}

	f.Seq = e.frame.Seq + 1
	e.frame = f
	observability.Sync().OnRecompute(ctx, f.Block, f.Position.Phase.String(), time.Since(start), nil)
	e.Logger.Debug("recompute", "frame", f, "duration", time.Since(start))
	return f, nil
}

// candidate is a block with a usable address.
type candidate struct {
	index int
	addr  address.Address
	span  locate.Span
}

func (e *Engine) resolve() (Frame, error) {
	client := e.text.ClientHeight()
	// Window coordinates: the text pane starts below the header.
	ref := locate.EyeLevel(e.header, e.header+client)
	offset := e.text.ScrollTop() - e.header

	cands := e.candidates(offset)
	spans := make([]locate.Span, len(cands))
	for i, c := range cands {
		spans[i] = c.span
	}
	pos, err := locate.Locate(spans, ref)
	if err != nil {
		return Frame{}, err
	}

	cur := cands[pos.Block]
	viewport := e.renderer.Viewport()

	var t transform.Transform
	primary := cur.addr.Page
	switch pos.Phase {
	case locate.Inside:
		t, err = e.solve(cur.addr, viewport, ref, pos.Rate)
	case locate.AboveFirst:
		t, err = e.solve(cur.addr, viewport, ref, 0)
	case locate.BelowLast:
		t, err = e.solve(cur.addr, viewport, ref, 1)
	case locate.Between:
		t, primary, err = e.between(cur, cands[pos.Block+1], viewport, ref, pos.Rate)
	default:
		err = errors.New(errors.ErrCodeInternal, "unknown phase %v", pos.Phase)
	}
	if err != nil {
		return Frame{}, err
	}

	if err := e.renderer.Render(t, primary); err != nil {
		return Frame{}, err
	}
	if e.overlay {
		e.renderer.Annotate(
			fmt.Sprintf("%s block %d", pos.Phase, cur.index),
			fmt.Sprintf("rate %.3f", pos.Rate),
			t.String(),
			fmt.Sprintf("page %d/%d", primary+1, e.pages.Len()),
		)
	}

	return Frame{
		Block:     cur.index,
		Position:  locate.Position{Block: cur.index, Phase: pos.Phase, Rate: pos.Rate},
		Transform: t,
		Page:      primary,
		EyeLevel:  ref,
	}, nil
}

// candidates returns the blocks with parseable addresses, with spans in
// window coordinates.
func (e *Engine) candidates(offset float64) []candidate {
	rects := e.text.Blocks()
	out := make([]candidate, 0, len(rects))
	for i, r := range rects {
		p, ok := e.addrs[r.Address()]
		if !ok {
			p.addr, p.err = address.First(r.Address())
			e.addrs[r.Address()] = p
			if p.err != nil {
				e.Logger.Warn("skipping block with malformed address", "block", i, "err", p.err)
			}
		}
		if p.err != nil {
			continue
		}
		out = append(out, candidate{
			index: i,
			addr:  p.addr,
			span:  locate.Span{Top: r.Top() - offset, Bottom: r.Bottom() - offset},
		})
	}
	return out
}

func (e *Engine) solve(a address.Address, viewport transform.Size, ref, rate float64) (transform.Transform, error) {
	img, ok := e.pages.Page(a.Page)
	if !ok {
		return transform.Transform{}, errors.New(errors.ErrCodePageNotFound, "page %d of %d", a.Page, e.pages.Len())
	}
	return transform.Solve(pane.PageSize(img), viewport, a.Region(), ref, rate, transform.WithHeaderHeight(e.header))
}

// between blends from the bottom edge of the earlier block to the top edge
// of the later one. Blocks on the same or adjacent pages are blended in the
// earlier page's coordinates, which stay primary throughout.
//
// Pages further apart are never drawn stacked, so there is nothing to
// blend across: the earlier block's transform holds below rate 0.5 and the
// later block's transform, with its own page primary, from 0.5 on.
func (e *Engine) between(prev, next candidate, viewport transform.Size, ref, rate float64) (transform.Transform, int, error) {
	t0, err := e.solve(prev.addr, viewport, ref, 1)
	if err != nil {
		return transform.Transform{}, 0, err
	}
	t1, err := e.solve(next.addr, viewport, ref, 0)
	if err != nil {
		return transform.Transform{}, 0, err
	}

	primary := prev.addr.Page
	switch next.addr.Page - primary {
	case 0:
	case 1:
		img, _ := e.pages.Page(primary)
		t1 = t1.Rebase(pane.PageSize(img).Height)
	case -1:
		img, _ := e.pages.Page(next.addr.Page)
		t1 = t1.Rebase(-pane.PageSize(img).Height)
	default:
		if rate < 0.5 {
			return t0, primary, nil
		}
		return t1, next.addr.Page, nil
	}
	return transform.Blend(t0, t1, rate), primary, nil
}
