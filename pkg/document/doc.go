// Package document loads layout documents and models the text pane.
//
// A layout document is the JSON form of a converted paper: the ordered page
// images and the transcript blocks, each carrying the address of its source
// region on a page.
//
//	{
//	  "title": "Attention Is All You Need",
//	  "header_height": 40,
//	  "pages_glob": "pages/page-*.png",
//	  "blocks": [
//	    {"id": "txt0", "kind": "heading", "address": "0,120,80,1100,130", "text": "Abstract"},
//	    {"id": "txt1", "address": "0,120,140,1100,420", "text": "The dominant ..."}
//	  ]
//	}
//
// Blocks may carry their measured extent in the transcript (top, bottom).
// When they don't, [Stack] lays them out one below the other.
//
// [Pane] is the text pane: it pads the transcript so the first and last
// block can reach eye level, tracks the scroll offset, and exposes the
// blocks as [locate.LayoutRect] values.
package document
