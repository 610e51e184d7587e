package document

import (
	"github.com/matzehuels/papersync/pkg/locate"
)

// Pane is the scrollable text pane. Content coordinates include the
// padding: a quarter of the client height above the first block and three
// quarters below the last.
type Pane struct {
	blocks    []Block
	rects     []locate.LayoutRect
	client    float64
	scrollTop float64
}

// NewPane creates a pane over laid-out blocks.
func NewPane(blocks []Block, clientHeight float64) *Pane {
	p := &Pane{blocks: blocks}
	p.Resize(clientHeight)
	return p
}

// Resize sets the client height, re-padding the content and clamping the
// scroll offset.
func (p *Pane) Resize(clientHeight float64) {
	p.client = max(clientHeight, 0)
	pad := p.PadTop()
	p.rects = make([]locate.LayoutRect, len(p.blocks))
	for i, b := range p.blocks {
		p.rects[i] = rect{top: pad + b.Top, bottom: pad + b.Bottom, addr: b.Address}
	}
	p.ScrollTo(p.scrollTop)
}

// PadTop is the space above the first block.
func (p *Pane) PadTop() float64 { return p.client / 4 }

// PadBottom is the space below the last block.
func (p *Pane) PadBottom() float64 { return p.client * 3 / 4 }

// ContentHeight is the padded height of the transcript.
func (p *Pane) ContentHeight() float64 {
	end := 0.0
	if n := len(p.blocks); n > 0 {
		end = p.blocks[n-1].Bottom
	}
	return p.PadTop() + end + p.PadBottom()
}

// MaxScroll is the largest valid scroll offset.
func (p *Pane) MaxScroll() float64 {
	return max(p.ContentHeight()-p.client, 0)
}

// ScrollTo moves the pane to y, clamped to [0, MaxScroll].
func (p *Pane) ScrollTo(y float64) {
	p.scrollTop = min(max(y, 0), p.MaxScroll())
}

// ScrollBy moves the pane by dy.
func (p *Pane) ScrollBy(dy float64) { p.ScrollTo(p.scrollTop + dy) }

// ScrollToBlock scrolls so that the top of block i sits at eye level.
func (p *Pane) ScrollToBlock(i int) {
	if i < 0 || i >= len(p.rects) {
		return
	}
	p.ScrollTo(p.rects[i].Top() - locate.EyeLevel(0, p.client))
}

// ScrollTop returns the scroll offset.
func (p *Pane) ScrollTop() float64 { return p.scrollTop }

// ClientHeight returns the visible height.
func (p *Pane) ClientHeight() float64 { return p.client }

// Blocks returns the block rects in content coordinates.
func (p *Pane) Blocks() []locate.LayoutRect { return p.rects }

// Block returns block i.
func (p *Pane) Block(i int) (Block, bool) {
	if i < 0 || i >= len(p.blocks) {
		return Block{}, false
	}
	return p.blocks[i], true
}

// Len returns the number of blocks.
func (p *Pane) Len() int { return len(p.blocks) }

type rect struct {
	top, bottom float64
	addr        string
}

func (r rect) Top() float64    { return r.top }
func (r rect) Bottom() float64 { return r.bottom }
func (r rect) Address() string { return r.addr }
