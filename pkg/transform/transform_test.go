package transform

import (
	"math"
	"testing"

	"github.com/matzehuels/papersync/pkg/errors"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestSolveZoom(t *testing.T) {
	tests := []struct {
		name     string
		viewport float64
		target   float64
	}{
		{"end to end example", 500, 200},
		{"narrow region", 800, 13},
		{"wide region", 320, 2400},
		{"fractional", 333.3, 77.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Solve(Size{1000, 1000}, Size{tt.viewport, 600}, Region{Left: 5, Top: 5, Width: tt.target, Height: 40}, 100, 0.3)
			if err != nil {
				t.Fatalf("Solve() error: %v", err)
			}
			want := tt.viewport / (1.2 * tt.target)
			if got.Zoom != want {
				t.Errorf("Zoom = %v, want exactly %v", got.Zoom, want)
			}
		})
	}
}

func TestSolveEndToEnd(t *testing.T) {
	// Page 1000x1000, region 0,100,100,300,300, viewport width 500, top edge.
	got, err := Solve(Size{1000, 1000}, Size{500, 400}, Region{Left: 100, Top: 100, Width: 200, Height: 200}, 0, 0)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if !near(got.Zoom, 500.0/240.0) {
		t.Errorf("Zoom = %v, want %v", got.Zoom, 500.0/240.0)
	}
	if got.PanX != 90 {
		t.Errorf("PanX = %v, want 90", got.PanX)
	}
	if got.PanY != 100 {
		t.Errorf("PanY = %v, want 100", got.PanY)
	}
}

func TestSolvePanY(t *testing.T) {
	region := Region{Left: 100, Top: 100, Width: 200, Height: 200}
	viewport := Size{Width: 480, Height: 600} // zoom 2

	tests := []struct {
		name      string
		reference float64
		edgeRate  float64
		header    float64
		want      float64
	}{
		{"top edge at reference", 200, 0, 0, 100 - 100},
		{"bottom edge at reference", 200, 1, 0, 300 - 100},
		{"midway", 200, 0.5, 0, 200 - 100},
		{"header shifts reference", 200, 0, 40, 100 - 80},
		{"rate clamped high", 200, 3, 0, 300 - 100},
		{"rate clamped low", 200, -1, 0, 100 - 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Solve(Size{1000, 1000}, viewport, region, tt.reference, tt.edgeRate, WithHeaderHeight(tt.header))
			if err != nil {
				t.Fatalf("Solve() error: %v", err)
			}
			if !near(got.PanY, tt.want) {
				t.Errorf("PanY = %v, want %v", got.PanY, tt.want)
			}
		})
	}
}

func TestSolveAnchorsEdgeAtReference(t *testing.T) {
	region := Region{Left: 40, Top: 700, Width: 300, Height: 90}
	reference, header := 260.0, 30.0
	for _, rate := range []float64{0, 0.25, 0.5, 1} {
		tr, err := Solve(Size{800, 1100}, Size{640, 700}, region, reference, rate, WithHeaderHeight(header))
		if err != nil {
			t.Fatalf("Solve() error: %v", err)
		}
		y := tr.Zoom * (region.Top + rate*region.Height - tr.PanY)
		if !near(y, reference-header) {
			t.Errorf("rate %v: anchor lands at %v, want %v", rate, y, reference-header)
		}
		x := tr.Zoom * (region.Left - tr.PanX)
		if !near(x, tr.Zoom*PadRate*region.Width) {
			t.Errorf("rate %v: region left lands at %v", rate, x)
		}
	}
}

func TestSolveDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		viewport Size
		target   Region
	}{
		{"zero viewport width", Size{0, 400}, Region{Width: 10}},
		{"negative viewport width", Size{-5, 400}, Region{Width: 10}},
		{"zero target width", Size{500, 400}, Region{Width: 0}},
		{"negative target width", Size{500, 400}, Region{Width: -10}},
		{"nan target width", Size{500, 400}, Region{Width: math.NaN()}},
		{"infinite viewport", Size{math.Inf(1), 400}, Region{Width: 10}},
		{"nan top", Size{500, 400}, Region{Top: math.NaN(), Width: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(Size{1000, 1000}, tt.viewport, tt.target, 0, 0)
			if !errors.Is(err, errors.ErrCodeDegenerateRegion) {
				t.Errorf("Solve() error = %v, want DEGENERATE_REGION", err)
			}
		})
	}
}

func TestBlendEndpoints(t *testing.T) {
	t0 := Transform{Zoom: 1.5, PanX: 10.1, PanY: -33.3}
	t1 := Transform{Zoom: 0.7, PanX: 91.7, PanY: 1203.9}

	if got := Blend(t0, t1, 0); got != t0 {
		t.Errorf("Blend(t0,t1,0) = %v, want %v", got, t0)
	}
	if got := Blend(t0, t1, 1); got != t1 {
		t.Errorf("Blend(t0,t1,1) = %v, want %v", got, t1)
	}
}

func TestBlendIdentity(t *testing.T) {
	tr := Transform{Zoom: 2.0833333333333335, PanX: 90, PanY: 0.1}
	for _, r := range []float64{0, 0.1, 0.3333333, 0.5, 0.9, 1} {
		if got := Blend(tr, tr, r); got != tr {
			t.Errorf("Blend(t,t,%v) = %v, want %v", r, got, tr)
		}
	}
}

func TestBlendMidpoint(t *testing.T) {
	got := Blend(Transform{Zoom: 1, PanX: 0, PanY: 100}, Transform{Zoom: 3, PanX: 20, PanY: 300}, 0.25)
	want := Transform{Zoom: 1.5, PanX: 5, PanY: 150}
	if !near(got.Zoom, want.Zoom) || !near(got.PanX, want.PanX) || !near(got.PanY, want.PanY) {
		t.Errorf("Blend() = %v, want %v", got, want)
	}
}

func TestBlendClampsRate(t *testing.T) {
	t0 := Transform{Zoom: 1}
	t1 := Transform{Zoom: 2}
	if got := Blend(t0, t1, -0.5); got != t0 {
		t.Errorf("Blend(rate<0) = %v, want %v", got, t0)
	}
	if got := Blend(t0, t1, 1.5); got != t1 {
		t.Errorf("Blend(rate>1) = %v, want %v", got, t1)
	}
}

func TestRebase(t *testing.T) {
	tr := Transform{Zoom: 2, PanX: 3, PanY: 4}
	got := tr.Rebase(1000)
	if got.PanY != 1004 || got.PanX != 3 || got.Zoom != 2 {
		t.Errorf("Rebase() = %v", got)
	}
	if tr.PanY != 4 {
		t.Error("Rebase() modified receiver")
	}
}
