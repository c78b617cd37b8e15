// Package overlap renders the pairwise overlap of sets as a node-link diagram.
//
// # Overview
//
// Where the upset plot lists every intersection as a row, the overlap
// diagram summarizes a model in one picture: each set is a node and each
// pair of sets that share at least one counted element is joined by an
// edge. Edge weight is the summed value of all intersections containing
// both sets, and thicker edges mean larger overlaps.
//
// # Usage
//
//	dot := overlap.ToDOT(m, overlap.Options{Detailed: true})
//	svg, err := overlap.RenderSVG(ctx, dot)
//
// # DOT Format
//
// [ToDOT] produces an undirected Graphviz graph with left-to-right layout.
// Nodes and edges are emitted in set column order, so identical models
// produce identical DOT source.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package overlap
