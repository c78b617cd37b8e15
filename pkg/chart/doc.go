// Package chart manages one mounted upset chart.
//
// A [Chart] ties together the data model, the layout engine, the renderer
// and the interaction controller. It owns the current layout and scene, a
// single tooltip that lives as long as the chart, and the interaction
// state. Every input is routed to the cheapest redraw that keeps the scene
// consistent:
//
//   - new data, resize and font changes recompute the layout and redraw;
//   - hover changes recolor the existing scene;
//   - selection changes redraw.
//
// A [Loader] reads uploads in the background and delivers only the most
// recently requested one.
//
// Charts are not safe for concurrent use. Callers that share a chart
// between goroutines must serialize access.
package chart
