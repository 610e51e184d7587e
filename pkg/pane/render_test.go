package pane_test

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/pane/panetest"
	"github.com/matzehuels/papersync/pkg/transform"
)

func threePages() (panetest.Pages, map[image.Image]string) {
	pages := panetest.Pages{panetest.Blank(100, 200), panetest.Blank(100, 200), panetest.Blank(100, 150)}
	names := map[image.Image]string{pages[0]: "p0", pages[1]: "p1", pages[2]: "p2"}
	return pages, names
}

func TestRenderMiddlePage(t *testing.T) {
	pages, names := threePages()
	rec := panetest.NewRecorder(240, 300)
	rec.Names = names
	r := pane.NewRenderer(rec, rec, pages)

	if err := r.Render(transform.Transform{Zoom: 2, PanX: 10, PanY: 50}, 1); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	want := []string{
		"resize 600x1200",
		"scroll 220.00,500.00",
		"save",
		"fill 0,0 600x1200 #ffffff",
		"scale 2.0000",
		"image p1 at 100,200",
		"image p0 at 100,0",
		"image p2 at 100,400",
		"restore",
	}
	if got := rec.Ops(); !reflect.DeepEqual(got, want) {
		t.Errorf("ops:\n%v\nwant:\n%v", got, want)
	}
}

func TestRenderEdgePages(t *testing.T) {
	pages, names := threePages()

	tests := []struct {
		name    string
		primary int
		images  []string
	}{
		{"first page draws only successor", 0, []string{"image p0 at 100,200", "image p1 at 100,400"}},
		{"last page draws only predecessor", 2, []string{"image p2 at 100,150", "image p1 at 100,-50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := panetest.NewRecorder(240, 300)
			rec.Names = names
			r := pane.NewRenderer(rec, rec, pages)
			if err := r.Render(transform.Transform{Zoom: 1}, tt.primary); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			var got []string
			for _, op := range rec.Ops() {
				if len(op) > 5 && op[:5] == "image" {
					got = append(got, op)
				}
			}
			if !reflect.DeepEqual(got, tt.images) {
				t.Errorf("images = %v, want %v", got, tt.images)
			}
		})
	}
}

func TestRenderWithoutAdjacentPages(t *testing.T) {
	pages, names := threePages()
	rec := panetest.NewRecorder(240, 300)
	rec.Names = names
	r := pane.NewRenderer(rec, rec, pages, pane.WithAdjacentPages(false), pane.WithMultiple(2), pane.WithBackground(color.Black))

	if err := r.Render(transform.Transform{Zoom: 0.5}, 1); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := []string{
		"resize 100x200",
		"scroll 50.00,100.00",
		"save",
		"fill 0,0 100x200 #000000",
		"scale 0.5000",
		"image p1 at 100,200",
		"restore",
	}
	if got := rec.Ops(); !reflect.DeepEqual(got, want) {
		t.Errorf("ops:\n%v\nwant:\n%v", got, want)
	}
}

func TestRenderErrorsLeaveSurfaceUntouched(t *testing.T) {
	pages, _ := threePages()

	tests := []struct {
		name    string
		tr      transform.Transform
		primary int
		code    errors.Code
	}{
		{"missing page", transform.Transform{Zoom: 1}, 7, errors.ErrCodePageNotFound},
		{"negative page", transform.Transform{Zoom: 1}, -1, errors.ErrCodePageNotFound},
		{"zero zoom", transform.Transform{Zoom: 0}, 0, errors.ErrCodeDegenerateRegion},
		{"runaway zoom", transform.Transform{Zoom: 4.2e12}, 0, errors.ErrCodeDegenerateRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := panetest.NewRecorder(240, 300)
			r := pane.NewRenderer(rec, rec, pages)
			err := r.Render(tt.tr, tt.primary)
			if !errors.Is(err, tt.code) {
				t.Errorf("Render() error = %v, want %s", err, tt.code)
			}
			if len(rec.Ops()) != 0 {
				t.Errorf("Render() drew on error: %v", rec.Ops())
			}
		})
	}
}

func TestRenderFramesRegionAtTopLeft(t *testing.T) {
	pages, _ := threePages()
	rec := panetest.NewRecorder(240, 300)
	r := pane.NewRenderer(rec, rec, pages)
	tr := transform.Transform{Zoom: 1.5, PanX: 12, PanY: 30}
	if err := r.Render(tr, 0); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	// The primary page is drawn at (w, h) in source units, so source point
	// (PanX, PanY) sits at Zoom*(w+PanX, h+PanY) on the surface.
	sx, sy := rec.ScrollOffset()
	if sx != 1.5*(100+12) || sy != 1.5*(200+30) {
		t.Errorf("scroll = %v,%v", sx, sy)
	}
}
