// Package layout computes upset plot geometry.
//
// [Compute] is a pure function of a [matrix.Matrix] and a pixel budget. It
// reserves margins, splits the chart area into a dot matrix on the left and
// a bar region on the right, sizes cells and rows, fits a linear bar scale
// with at most [MaxTicks] axis ticks, and decides the label policy (font
// size, rotation of set labels, truncation of row labels).
//
// The result is recomputed from scratch whenever the size, font size, or
// model changes. Every coordinate in a [Layout] is absolute, in user units
// of the output surface, so renderers do no geometry of their own.
//
//	+---------------------------------------------------------------+
//	|                     top margin (30)                           |
//	|        set labels        |spacer|  axis ticks                 |
//	| left  +------------------+      +------------------+  value   |
//	| margin| o . o . . o      |      |#########         |  labels  |
//	| (row  | . o o . . .      |      |#####             |  (40)    |
//	| labels)+-----------------+      +------------------+  right   |
//	|                     bottom margin (10)                        |
//	+---------------------------------------------------------------+
//
// A model with no sets or no rows, or a size that leaves no room after the
// margins, yields [ErrEmpty]: there is nothing to draw and callers skip
// drawing rather than fail.
package layout
