// Package pages loads and decodes the page images shown in the image pane.
//
// A [Source] lists page references in reading order and opens them one at a
// time. Two sources are provided:
//
//   - [FetchSource]: http(s) URLs (through a cache and retry) or files
//     relative to a base directory
//   - [EmbeddedSource]: in-memory bytes or base64 data URIs, as found in a
//     self-contained HTML export
//
// [Load] starts decoding every page concurrently and returns a [Set]
// immediately. Each page is a future; [Set.Wait] is the barrier that the
// sync engine blocks on before its first recompute. A page that fails to
// load stays absent and the renderer skips it.
//
//	set := pages.Load(ctx, src, pages.WithConcurrency(4))
//	if err := set.Wait(ctx); err != nil {
//	    return err // ctx cancelled
//	}
//	img, ok := set.Page(0)
package pages
