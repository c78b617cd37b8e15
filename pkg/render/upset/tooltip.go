package upset

import (
	"strconv"
	"strings"

	"github.com/matzehuels/upset/pkg/matrix"
)

// IntersectionGlyph joins set names in tooltip text.
const IntersectionGlyph = " ∩ "

// Tooltip offsets from the pointer, in pixels.
const (
	TooltipOffsetX = 10.0
	TooltipOffsetY = -28.0
)

// Tooltip is the floating label of one chart. A chart creates one tooltip
// when mounted and reuses it across redraws.
type Tooltip struct {
	visible   bool
	destroyed bool
	key       string
	value     int
	x, y      float64
}

// NewTooltip returns a hidden tooltip.
func NewTooltip() *Tooltip { return &Tooltip{} }

// Show displays the tooltip for an intersection near the pointer.
func (t *Tooltip) Show(key string, value int, x, y float64) {
	if t.destroyed {
		return
	}
	t.key, t.value = key, value
	t.visible = true
	t.Move(x, y)
}

// Move follows the pointer while visible.
func (t *Tooltip) Move(x, y float64) {
	if !t.visible {
		return
	}
	t.x, t.y = x+TooltipOffsetX, y+TooltipOffsetY
}

// Hide hides the tooltip.
func (t *Tooltip) Hide() { t.visible = false }

// Destroy hides the tooltip for good.
func (t *Tooltip) Destroy() {
	t.Hide()
	t.destroyed = true
}

// Visible reports whether the tooltip is shown.
func (t *Tooltip) Visible() bool { return t.visible }

// Destroyed reports whether Destroy was called.
func (t *Tooltip) Destroyed() bool { return t.destroyed }

// Key returns the intersection the tooltip describes.
func (t *Tooltip) Key() string { return t.key }

// Position returns the top left corner of the tooltip.
func (t *Tooltip) Position() (x, y float64) { return t.x, t.y }

// Text returns the tooltip content, empty when hidden.
func (t *Tooltip) Text() string {
	if !t.visible {
		return ""
	}
	return TooltipText(t.key, t.value)
}

// TooltipText formats an intersection as "A ∩ B: 45".
func TooltipText(key string, value int) string {
	names := matrix.Intersection{Key: key, Value: value}.Components()
	return strings.Join(names, IntersectionGlyph) + ": " + strconv.Itoa(value)
}
