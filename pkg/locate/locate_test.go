package locate

import (
	"math"
	"testing"

	"github.com/matzehuels/papersync/pkg/errors"
)

var contiguous = []Span{{0, 100}, {100, 200}, {200, 300}}

var gapped = []Span{{50, 100}, {140, 200}, {260, 300}}

func TestLocate(t *testing.T) {
	tests := []struct {
		name      string
		spans     []Span
		reference float64
		want      Position
	}{
		{
			name:      "middle of second block",
			spans:     contiguous,
			reference: 150,
			want:      Position{Block: 1, Phase: Inside, Rate: 0.5},
		},
		{
			name:      "top of first block",
			spans:     contiguous,
			reference: 0,
			want:      Position{Block: 0, Phase: Inside, Rate: 0},
		},
		{
			name:      "shared boundary belongs to later block",
			spans:     contiguous,
			reference: 100,
			want:      Position{Block: 1, Phase: Inside, Rate: 0},
		},
		{
			name:      "second shared boundary",
			spans:     contiguous,
			reference: 200,
			want:      Position{Block: 2, Phase: Inside, Rate: 0},
		},
		{
			name:      "inside last block",
			spans:     contiguous,
			reference: 250,
			want:      Position{Block: 2, Phase: Inside, Rate: 0.5},
		},
		{
			name:      "bottom of last block",
			spans:     contiguous,
			reference: 300,
			want:      Position{Block: 2, Phase: Inside, Rate: 1},
		},
		{
			name:      "above first block",
			spans:     gapped,
			reference: 10,
			want:      Position{Block: 0, Phase: AboveFirst, Rate: 0},
		},
		{
			name:      "below last block",
			spans:     gapped,
			reference: 400,
			want:      Position{Block: 2, Phase: BelowLast, Rate: 1},
		},
		{
			name:      "quarter through first gap",
			spans:     gapped,
			reference: 110,
			want:      Position{Block: 0, Phase: Between, Rate: 0.25},
		},
		{
			name:      "half through second gap",
			spans:     gapped,
			reference: 230,
			want:      Position{Block: 1, Phase: Between, Rate: 0.5},
		},
		{
			name:      "top edge of gapped block is inside",
			spans:     gapped,
			reference: 140,
			want:      Position{Block: 1, Phase: Inside, Rate: 0},
		},
		{
			name:      "bottom edge of gapped block is inside",
			spans:     gapped,
			reference: 100,
			want:      Position{Block: 0, Phase: Inside, Rate: 1},
		},
		{
			name:      "zero height block",
			spans:     []Span{{10, 10}},
			reference: 10,
			want:      Position{Block: 0, Phase: Inside, Rate: 0},
		},
		{
			name:      "single block above",
			spans:     []Span{{10, 20}},
			reference: -5,
			want:      Position{Block: 0, Phase: AboveFirst, Rate: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(tt.spans, tt.reference)
			if err != nil {
				t.Fatalf("Locate() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Locate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocateSharedBoundaryNeverBetween(t *testing.T) {
	for _, ref := range []float64{0, 100, 200, 300} {
		got, err := Locate(contiguous, ref)
		if err != nil {
			t.Fatalf("Locate(%v) error: %v", ref, err)
		}
		if got.Phase != Inside {
			t.Errorf("Locate(%v) phase = %v, want inside", ref, got.Phase)
		}
	}
}

func TestLocateRateInRange(t *testing.T) {
	for ref := -50.0; ref <= 350; ref += 3.7 {
		got, err := Locate(gapped, ref)
		if err != nil {
			t.Fatalf("Locate(%v) error: %v", ref, err)
		}
		if got.Rate < 0 || got.Rate > 1 {
			t.Errorf("Locate(%v) rate = %v out of [0,1]", ref, got.Rate)
		}
	}
}

func TestLocateNoMatch(t *testing.T) {
	tests := []struct {
		name      string
		spans     []Span
		reference float64
	}{
		{"empty", nil, 10},
		{"nan reference", contiguous, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Locate(tt.spans, tt.reference)
			if !errors.Is(err, errors.ErrCodeNoMatch) {
				t.Errorf("Locate() error = %v, want NO_MATCH", err)
			}
		})
	}
}

type rect struct {
	top, bottom float64
	addr        string
}

func (r rect) Top() float64    { return r.top }
func (r rect) Bottom() float64 { return r.bottom }
func (r rect) Address() string { return r.addr }

func TestSpans(t *testing.T) {
	rects := []LayoutRect{rect{top: 500, bottom: 600}, rect{top: 620, bottom: 700}}
	got := Spans(rects, 450)
	want := []Span{{50, 150}, {170, 250}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Spans()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEyeLevel(t *testing.T) {
	if got := EyeLevel(0, 900); got != 300 {
		t.Errorf("EyeLevel(0, 900) = %v, want 300", got)
	}
	if got := EyeLevel(300, 600); math.Abs(got-400) > 1e-9 {
		t.Errorf("EyeLevel(300, 600) = %v, want 400", got)
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{Inside: "inside", AboveFirst: "above-first", BelowLast: "below-last", Between: "between", Phase(9): "phase(9)"} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}

func TestLocateRects(t *testing.T) {
	rects := []LayoutRect{rect{top: 500, bottom: 600}, rect{top: 700, bottom: 800}}
	got, err := LocateRects(rects, 450, 200)
	if err != nil {
		t.Fatalf("LocateRects: %v", err)
	}
	if got.Phase != Between || got.Block != 0 || math.Abs(got.Rate-0.5) > 1e-9 {
		t.Errorf("LocateRects = %v, want between(0) rate 0.5", got)
	}
}
