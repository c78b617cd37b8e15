// Package upset turns a computed layout into a drawable scene.
//
// # Overview
//
// A [Scene] is an ordered list of primitive [Element] values (rects,
// circles, lines and text) in absolute pixel coordinates. Sinks in the
// [sink] subpackage serialize a scene to SVG, PNG or JSON; the scene itself
// knows nothing about output formats.
//
//	l, err := layout.Compute(m, layout.Options{Width: 800, Height: 600, FontSize: 12})
//	scene := upset.Draw(l, m, state)
//	svg := sink.RenderSVG(scene)
//
// # Drawing Order
//
// [Draw] emits, back to front: the matrix frame, set labels, one group of
// background cells and membership dots per row, bars, value labels, the top
// axis, row labels and finally one transparent hit rect per row. Hit rects
// carry the intersection key so pointer events can be routed back to the
// chart.
//
// # Recoloring
//
// Every cell, dot and bar records its row key, its set and whether the set
// is a component of the row. [Recolor] uses that to repaint fills for a new
// interaction state without touching geometry. Hover changes go through
// Recolor; selection changes redraw.
//
// [sink]: github.com/matzehuels/upset/pkg/render/upset/sink
package upset
