// Package pane draws a solved transform onto the image pane.
//
// # Contract
//
// The image pane is modelled as three capabilities:
//
//   - [Surface]: a drawing surface with a resizable logical size
//   - [Context]: an immediate-mode 2D context on that surface (save/restore,
//     scale, translate, fill-rect, draw-image)
//   - [Scroller]: the scrollable container around the surface
//
// A browser canvas inside an overflowing div satisfies this contract, and so
// does [github.com/matzehuels/papersync/pkg/pane/raster.Window], which keeps
// only the visible part of the surface in memory.
//
// # Rendering
//
// [Renderer.Render] sizes the surface to a multiple of the zoomed primary
// page, scrolls the pane so the transform's pan lands at the viewport's
// top-left corner, clears to white and draws the primary page one page-size
// in from the surface origin. The neighbouring pages are drawn directly above
// and below it, so a transform blended across a page break shows continuous
// paper instead of a gap.
package pane
