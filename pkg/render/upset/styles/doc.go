// Package styles holds the colors and text helpers of the upset renderer.
//
// Every paintable element of a chart gets its fill from [Palette.Fill],
// which maps a [CellState] to one of four tiers:
//
//	selected + included   strongest accent
//	selected + excluded   light accent
//	hovered  + included   hover accent
//	default               neutral, dark for included and light for excluded
//
// Hover never changes how excluded cells are drawn, and selection always
// wins over hover.
package styles
