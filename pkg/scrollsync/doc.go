// Package scrollsync keeps the image pane in step with the text pane.
//
// An [Engine] owns the text pane, the page set and the renderer. Every
// recompute runs the same steps:
//
//  1. read the viewport and compute the eye level of the text pane
//  2. parse block addresses (cached) and drop malformed blocks
//  3. locate the eye level among the remaining blocks
//  4. solve a transform for the located block, or blend two transforms
//     when the eye level sits in the gap between blocks
//  5. render the primary page under that transform
//
// Failures never abort the engine: the previous frame stays on screen and
// the error is returned to the caller.
//
// The engine is not safe for concurrent use. Drive it from one goroutine
// with [Engine.Run], which serializes scroll, resize and images-loaded
// events:
//
//	events := make(chan scrollsync.Event)
//	go engine.WaitAndRun(ctx, set, events)
//	events <- scrollsync.Event{Kind: scrollsync.EventScroll, Update: func() { text.ScrollTo(300) }}
package scrollsync
