// Package pkg holds the libraries behind the upset command.
//
// # Overview
//
// An upset plot shows how many items fall into each combination of sets.
// Each row is one intersection: a dot matrix marks its member sets and a
// horizontal bar shows its count. The packages are arranged along the data
// flow:
//
//	TSV file
//	    ↓
//	[matrix] (parse counts into sets and intersections)
//	    ↓
//	[render/upset/layout] (fit columns, rows, labels and the bar scale)
//	    ↓
//	[render/upset] (draw a scene for the current hover and selection)
//	    ↓
//	[render/upset/sink] (SVG, PNG or JSON)
//
// [interact] tracks hover and selection and tells callers how much of the
// scene to redraw. [chart] binds a model, a layout and an interaction state
// into one mounted chart, and [session] keeps charts alive for the server.
//
// # Quick Start
//
//	res, err := matrix.ParseString("A\t12\nA,B\t7\n")
//	if err != nil {
//	    return err
//	}
//	l, err := layout.Compute(res.Matrix, layout.Options{Width: 800, Height: 400})
//	if err != nil {
//	    return err
//	}
//	scene := upset.Draw(l, res.Matrix, interact.State{})
//	svg := sink.RenderSVG(scene)
//
// For cached, multi-format rendering use [pipeline.Runner].
//
// # Supporting Packages
//
//   - [cache]: file, Redis and MongoDB caches for layouts and artifacts
//   - [config]: the optional TOML configuration file
//   - [errors]: error codes shared by the CLI and the HTTP server
//   - [httputil]: downloads of remote input files
//   - [observability]: hooks for metrics and tracing
//   - [render/overlap]: pairwise set overlap as a Graphviz network
//
// [matrix]: github.com/matzehuels/upset/pkg/matrix
// [render/upset/layout]: github.com/matzehuels/upset/pkg/render/upset/layout
// [render/upset]: github.com/matzehuels/upset/pkg/render/upset
// [render/upset/sink]: github.com/matzehuels/upset/pkg/render/upset/sink
// [render/overlap]: github.com/matzehuels/upset/pkg/render/overlap
// [interact]: github.com/matzehuels/upset/pkg/interact
// [chart]: github.com/matzehuels/upset/pkg/chart
// [session]: github.com/matzehuels/upset/pkg/session
// [pipeline.Runner]: github.com/matzehuels/upset/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/upset/pkg/cache
// [config]: github.com/matzehuels/upset/pkg/config
// [errors]: github.com/matzehuels/upset/pkg/errors
// [httputil]: github.com/matzehuels/upset/pkg/httputil
// [observability]: github.com/matzehuels/upset/pkg/observability
package pkg
