package layout

import (
	"math"
	"unicode/utf8"
)

const (
	maxLabelFont    = 12.0
	minLabelFont    = 8.0
	labelFontBase   = 14.0
	labelFontShrink = 4.0

	rotateBelowCellWidth = 20.0
	rotateAboveSetCount  = 5
	rotatedAngle         = -45.0

	// charWidthRatio approximates the advance of one character as a
	// fraction of the font size.
	charWidthRatio = 0.6
	truncateSlack  = 2

	// Ellipsis is appended to truncated labels.
	Ellipsis = "…"
)

// Text anchors, matching SVG text-anchor values.
const (
	AnchorStart  = "start"
	AnchorMiddle = "middle"
	AnchorEnd    = "end"
)

// LabelPolicy describes how labels are placed.
type LabelPolicy struct {
	// Rotate is set when set labels are turned by Angle degrees and
	// anchored at their end to avoid overlapping neighbours.
	Rotate bool
	Angle  float64
	Anchor string

	// MaxRowLabelChars is the number of characters a row label may keep
	// before it is truncated. Zero disables row labels.
	MaxRowLabelChars int
}

// LabelFontSize returns the set label font: longer set names shrink it,
// bounded to [8, 12] and never above the base font size.
func LabelFontSize(fontSize float64, maxNameLen int) float64 {
	adaptive := math.Max(minLabelFont, labelFontBase-float64(maxNameLen)/labelFontShrink)
	return math.Min(maxLabelFont, math.Min(fontSize, adaptive))
}

// ComputeLabelPolicy decides rotation of set labels and the truncation
// width of row labels.
func ComputeLabelPolicy(cellWidth float64, setCount int, leftMargin, fontSize float64) LabelPolicy {
	p := LabelPolicy{Anchor: AnchorMiddle}
	if cellWidth < rotateBelowCellWidth && setCount > rotateAboveSetCount {
		p.Rotate = true
		p.Angle = rotatedAngle
		p.Anchor = AnchorEnd
	}
	p.MaxRowLabelChars = max(0, int(math.Floor(leftMargin/(fontSize*charWidthRatio)))-truncateSlack)
	return p
}

// TruncateLabel shortens s to maxChars characters plus an ellipsis. It
// reports whether s was shortened.
func TruncateLabel(s string, maxChars int) (string, bool) {
	if utf8.RuneCountInString(s) <= maxChars {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:maxChars]) + Ellipsis, true
}

// TextWidth estimates the rendered width of s.
func TextWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * charWidthRatio
}
