// Package render groups the chart renderers.
//
// # Upset Plots
//
// The [upset] subpackage draws the plot itself. Rendering is split into
// stages that can be cached and tested on their own:
//   - [upset/layout]: geometry from a model and a pixel budget
//   - [upset]: a scene of styled elements for one interaction state
//   - [upset/sink]: SVG, PNG and JSON encoders for a scene
//   - [upset/styles]: the colour palette
//
// # Overlap Networks
//
// The [overlap] subpackage draws sets as Graphviz nodes joined by edges
// weighted with their shared counts.
//
//	dot := overlap.ToDOT(m, overlap.Options{})
//	svg, err := overlap.RenderSVG(ctx, dot)
//
// [upset]: github.com/matzehuels/upset/pkg/render/upset
// [upset/layout]: github.com/matzehuels/upset/pkg/render/upset/layout
// [upset/sink]: github.com/matzehuels/upset/pkg/render/upset/sink
// [upset/styles]: github.com/matzehuels/upset/pkg/render/upset/styles
// [overlap]: github.com/matzehuels/upset/pkg/render/overlap
package render
