// Package pkg provides the libraries behind papersync.
//
// # Overview
//
// papersync keeps a page image in step with a transcript of the page. As
// the transcript scrolls, the block at eye level is located, its source
// region on the page image is read from its address, and the image pane is
// panned and zoomed so that region sits where the reader is looking.
//
// # Architecture
//
// The data flow through papersync:
//
//	layout document (JSON)
//	         ↓
//	    [document] package (blocks, page refs, text pane)
//	         ↓
//	    [pages] package (fetch + decode page images, concurrently)
//	         ↓
//	    [scrollsync] package (locate → solve → render, once per event)
//	         ↓
//	    [pane/raster] window (PNG frames)
//
// # Main Packages
//
//   - [address]: block address records ("page,left,top,right,bottom")
//   - [locate]: classify the eye level against laid-out blocks
//   - [transform]: solve the zoom and pan for a region
//   - [pane]: image pane interfaces and the page renderer
//   - [scrollsync]: the engine and its single-goroutine event loop
//   - [document]: layout documents and the text pane
//   - [pages]: page sources, decoding and the concurrent loader
//   - [cache]: page image cache (file, Redis, null)
//   - [httputil]: fetching with retry and backoff
//   - [errors]: coded errors shared by every layer
//   - [observability]: hooks for metrics and tracing
//   - [buildinfo]: version information set via ldflags
package pkg
