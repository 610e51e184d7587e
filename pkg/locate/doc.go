// Package locate finds the reading position: which transcript block, or which
// gap between two blocks, contains the text pane's eye level.
//
// # Phases
//
// The eye level sits either inside a block ([Inside]), above the first block
// ([AboveFirst]), below the last block ([BelowLast]), or in the gap between
// two consecutive blocks ([Between]). Every phase carries a rate in [0,1]:
// the fraction of the way through the block or gap.
//
// # Boundaries
//
// Block rects are compared with inclusive bounds, so a block whose top or
// bottom equals the eye level contains it. When two blocks share an edge at
// exactly the eye level, the later block wins. Touching blocks therefore never
// produce a zero-length gap.
//
// # Complexity
//
// [Locate] is a single forward scan and stops at the first match, which keeps
// every scroll event O(number of blocks).
package locate
