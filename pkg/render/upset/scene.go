package upset

import "github.com/matzehuels/upset/pkg/render/upset/styles"

// Shape is the primitive an element is drawn with.
type Shape string

const (
	ShapeRect   Shape = "rect"
	ShapeCircle Shape = "circle"
	ShapeLine   Shape = "line"
	ShapeText   Shape = "text"
)

// Role is what an element represents in the chart.
type Role string

const (
	RoleFrame      Role = "frame"
	RoleSetLabel   Role = "set-label"
	RoleCell       Role = "cell"
	RoleDot        Role = "dot"
	RoleBar        Role = "bar"
	RoleValueLabel Role = "value-label"
	RoleAxis       Role = "axis"
	RoleTick       Role = "tick"
	RoleTickLabel  Role = "tick-label"
	RoleRowLabel   Role = "row-label"
	RoleHit        Role = "hit"
)

// Element is one drawable primitive.
//
// Rects use X, Y, W, H. Circles are centered at X, Y with radius R. Lines
// run from X, Y to X2, Y2. Text is anchored at X, Y.
type Element struct {
	ID    string `json:"id,omitempty"`
	Shape Shape  `json:"shape"`
	Role  Role   `json:"role"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w,omitempty"`
	H  float64 `json:"h,omitempty"`
	R  float64 `json:"r,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	Text     string  `json:"text,omitempty"`
	Title    string  `json:"title,omitempty"` // full text shown on hover
	FontSize float64 `json:"font_size,omitempty"`
	Anchor   string  `json:"anchor,omitempty"`
	Baseline string  `json:"baseline,omitempty"` // "middle" centers text on Y
	Rotate   float64 `json:"rotate,omitempty"` // degrees around X, Y

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`

	// Row-bound elements carry their row. Row is -1 otherwise.
	Row      int    `json:"row"`
	Key      string `json:"key,omitempty"`
	Set      string `json:"set,omitempty"`
	Included bool   `json:"included,omitempty"`
}

// BaselineMiddle vertically centers text on its anchor.
const BaselineMiddle = "middle"

// Scene is a drawn chart. It keeps the palette and selection it was drawn
// with so sinks and [Recolor] can reproduce its colors.
type Scene struct {
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Background string         `json:"background,omitempty"`
	Palette    styles.Palette `json:"palette"`
	Selected   []string       `json:"selected,omitempty"`
	Hovered    string         `json:"hovered,omitempty"`
	Elements   []Element      `json:"elements"`
}

// Colors returns the scene palette, or the default palette for a scene
// built by hand.
func (s Scene) Colors() styles.Palette {
	if s.Palette == (styles.Palette{}) {
		return styles.DefaultPalette()
	}
	return s.Palette
}

// IsSelected reports whether the row key was selected when s was drawn.
func (s Scene) IsSelected(key string) bool {
	for _, k := range s.Selected {
		if k == key {
			return true
		}
	}
	return false
}

// Empty reports whether the scene has nothing to draw.
func (s Scene) Empty() bool { return len(s.Elements) == 0 }

// Find returns the element with id.
func (s Scene) Find(id string) (Element, bool) {
	for _, e := range s.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// ByRole returns the elements with role r in drawing order.
func (s Scene) ByRole(r Role) []Element {
	var out []Element
	for _, e := range s.Elements {
		if e.Role == r {
			out = append(out, e)
		}
	}
	return out
}

// HitTest returns the key of the row whose hit rect contains x, y.
func (s Scene) HitTest(x, y float64) (string, bool) {
	for i := len(s.Elements) - 1; i >= 0; i-- {
		e := s.Elements[i]
		if e.Role != RoleHit {
			continue
		}
		if x >= e.X && x < e.X+e.W && y >= e.Y && y < e.Y+e.H {
			return e.Key, true
		}
	}
	return "", false
}

// Keys returns the row keys in row order.
func (s Scene) Keys() []string {
	var keys []string
	for _, e := range s.Elements {
		if e.Role == RoleHit {
			keys = append(keys, e.Key)
		}
	}
	return keys
}
