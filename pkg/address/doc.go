// Package address parses and formats the per-block address strings that tie a
// transcript block to its source region on a page image.
//
// # Format
//
// An address is one or more records separated by '|'. Each record has five
// comma-separated fields:
//
//	page,left,top,right,bottom
//
// page is a zero-based page index; the remaining fields are pixel
// coordinates in that page's image, with the origin at the top-left corner.
// A block spanning several regions (a paragraph continued in the next column)
// carries several records:
//
//	0,72,540,300,610|0,320,80,548,130
//
// Only the first record drives the sync engine; later records are kept so
// that callers can round-trip the attribute with [Format].
package address
