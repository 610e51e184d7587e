package document

import "github.com/matzehuels/papersync/pkg/address"

// Stack defaults.
const (
	DefaultStackScale = 0.5
	DefaultStackGap   = 16
	DefaultMinHeight  = 24
)

type stackConfig struct {
	scale     float64
	gap       float64
	minHeight float64
}

// StackOption configures Stack.
type StackOption func(*stackConfig)

// WithScale sets the ratio of transcript height to source region height.
func WithScale(s float64) StackOption {
	return func(c *stackConfig) {
		if s > 0 {
			c.scale = s
		}
	}
}

// WithGap sets the vertical gap between blocks.
func WithGap(g float64) StackOption {
	return func(c *stackConfig) {
		if g >= 0 {
			c.gap = g
		}
	}
}

// WithMinHeight sets the height of blocks with short or unusable regions.
func WithMinHeight(h float64) StackOption {
	return func(c *stackConfig) {
		if h > 0 {
			c.minHeight = h
		}
	}
}

// Stack returns a copy of blocks laid out top to bottom starting at 0.
// Each block is as tall as its source region times the scale, at least
// the minimum height, with a fixed gap in between.
func Stack(blocks []Block, opts ...StackOption) []Block {
	cfg := stackConfig{scale: DefaultStackScale, gap: DefaultStackGap, minHeight: DefaultMinHeight}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]Block, len(blocks))
	y := 0.0
	for i, b := range blocks {
		h := cfg.minHeight
		if a, err := address.First(b.Address); err == nil {
			h = max(h, a.Height()*cfg.scale)
		}
		b.Top = y
		b.Bottom = y + h
		out[i] = b
		y = b.Bottom + cfg.gap
	}
	return out
}
