package scrollsync_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/papersync/pkg/document"
	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/pane/panetest"
	"github.com/matzehuels/papersync/pkg/scrollsync"
)

func ExampleEngine_Recompute() {
	pages := panetest.Pages{panetest.Blank(1000, 1000)}
	rec := panetest.NewRecorder(500, 600)
	text := document.NewPane([]document.Block{
		{Address: "0,100,100,300,300", Top: 0, Bottom: 900},
	}, 900)

	engine := scrollsync.NewEngine(text, pages, pane.NewRenderer(rec, rec, pages), scrollsync.WithImagesLoaded())
	text.ScrollTo(225) // block top at 0, eye level 300 into a 900 tall block
	f, err := engine.Recompute(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(f.Position)
	fmt.Println(f.Transform)
	// Output:
	// inside block=0 rate=0.333
	// zoom=2.0833 pan=(90.00,22.67)
}
