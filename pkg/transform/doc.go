// Package transform solves and blends the viewport transforms that frame a
// transcript block's source region on the image pane.
//
// # Coordinates
//
// A [Transform] maps page-image pixels to surface pixels:
//
//	surface = Zoom * (source - Pan)
//
// Pan is expressed in source pixels and names the page point that lands on
// the viewport's top-left corner. Zoom is applied after the pan, matching a
// drawing context that composes scale and translate.
//
// # Solving
//
// [Solve] picks the zoom so the region's width fills the viewport with
// padding, and the vertical pan so that a chosen edge of the region sits at
// the reference (eye-level) height:
//
//	t, err := transform.Solve(page, viewport, region, eyeLevel, 0.4,
//	    transform.WithHeaderHeight(48))
//
// An edge rate of 0 anchors the region's top edge at eye level, 1 anchors its
// bottom edge; values in between pan continuously through the region as the
// reader scrolls.
//
// # Blending
//
// [Blend] interpolates two transforms componentwise. The sync engine uses it
// while the eye level sits in the gap between two blocks, mixing the
// transform anchored at the earlier block's bottom with the one anchored at
// the later block's top.
package transform
