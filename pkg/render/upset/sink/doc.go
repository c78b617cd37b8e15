// Package sink provides output format renderers for upset scenes.
//
// # Overview
//
// A "sink" serializes a drawn [upset.Scene]. This package provides:
//
//   - SVG: self-contained vector output with client-side hover and click
//   - PNG: native raster output, no external tools required
//   - JSON: the scene itself, for external renderers
//
// # SVG Output
//
// [RenderSVG] writes every element with inline attributes, an embedded
// stylesheet generated from the scene palette and a small script that
// mirrors the chart's interaction model in the browser: hovering a row
// highlights it and shows a tooltip, clicking toggles its selection. With
// [WithEndpoint] clicks are also posted to a chart server.
//
//	svg := sink.RenderSVG(scene, sink.WithEndpoint("/api/charts/"+id))
//
// # PNG Output
//
// [RenderPNG] rasterizes the scene with golang.org/x/image using the Go
// Regular font. Drawing happens at a multiple of the target size and is
// downsampled for anti-aliasing.
//
//	png, err := sink.RenderPNG(scene, sink.WithScale(2))
//
// [upset.Scene]: github.com/matzehuels/upset/pkg/render/upset.Scene
package sink
