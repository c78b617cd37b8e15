// Package matrix holds the set/intersection data behind an upset plot and
// the parser for its tab-separated text format.
//
// # Model
//
// A [Matrix] is an immutable value: a deduplicated collection of set names
// and an ordered list of [Intersection] rows. Each row is identified by its
// combination key, the literal label from the source file, whose
// comma-separated components name the participating sets:
//
//	SetA        -> the set alone
//	SetA,SetB   -> the intersection of SetA and SetB
//
// Adding a row registers every component as a set, so the set collection is
// always exactly the union of all components. Row order is insertion order
// and becomes the row order of the chart. Set order is first-registration
// order and becomes the column order.
//
// Mutation never happens in place: [Matrix.WithSet] and
// [Matrix.WithIntersection] return new values, and [Builder] accumulates a
// whole file before freezing it with [Builder.Build].
//
// # File Format
//
//	# comment lines start with '#'
//	SetA<TAB>120
//	SetB<TAB>150
//	SetA,SetB<TAB>45
//
// Blank lines and comments are skipped. Every other line must split into
// exactly two tab-separated fields, otherwise the file is rejected with an
// INVALID_FORMAT error and no model is produced. A count that is not a
// non-negative base-10 integer drops that line with a [Warning] and parsing
// continues.
package matrix
