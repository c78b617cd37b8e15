package styles

// Kind is the kind of paintable element.
type Kind int

const (
	// KindCell is a background cell of the dot matrix.
	KindCell Kind = iota
	// KindDot is a membership dot.
	KindDot
	// KindBar is an intersection bar.
	KindBar
)

// Tier is one row of the palette table.
type Tier int

const (
	TierDefault Tier = iota
	TierHoveredIncluded
	TierSelectedExcluded
	TierSelectedIncluded
)

// CellState is everything the palette needs to pick a fill.
type CellState struct {
	Selected bool // the element's row is selected
	Hovered  bool // the element's row is hovered
	Included bool // the element's set is a component of the row
}

// Tier returns the palette tier for s.
func (s CellState) Tier() Tier {
	switch {
	case s.Selected && s.Included:
		return TierSelectedIncluded
	case s.Selected:
		return TierSelectedExcluded
	case s.Hovered && s.Included:
		return TierHoveredIncluded
	default:
		return TierDefault
	}
}

// Swatch is the fill of one element kind in each tier.
type Swatch struct {
	SelectedIncluded string `toml:"selected_included" json:"selected_included"`
	SelectedExcluded string `toml:"selected_excluded" json:"selected_excluded"`
	HoveredIncluded  string `toml:"hovered_included" json:"hovered_included"`
	Included         string `toml:"included" json:"included"`
	Excluded         string `toml:"excluded" json:"excluded"`
}

// Palette is the full color table of a chart.
type Palette struct {
	Cell Swatch `toml:"cell" json:"cell"`
	Dot  Swatch `toml:"dot" json:"dot"`
	Bar  Swatch `toml:"bar" json:"bar"`

	Background  string `toml:"background" json:"background"`
	Frame       string `toml:"frame" json:"frame"`
	Text        string `toml:"text" json:"text"`
	Axis        string `toml:"axis" json:"axis"`
	InsideLabel string `toml:"inside_label" json:"inside_label"`
	Tooltip     string `toml:"tooltip" json:"tooltip"`
}

// DefaultPalette is the built-in palette.
func DefaultPalette() Palette {
	return Palette{
		Cell: Swatch{
			SelectedIncluded: "#fde2c4",
			SelectedExcluded: "#fff4e8",
			HoveredIncluded:  "#dbe9f6",
			Included:         "#f4f4f4",
			Excluded:         "#f4f4f4",
		},
		Dot: Swatch{
			SelectedIncluded: "#e6550d",
			SelectedExcluded: "#fdd0a2",
			HoveredIncluded:  "#3182bd",
			Included:         "#333333",
			Excluded:         "#d9d9d9",
		},
		Bar: Swatch{
			SelectedIncluded: "#e6550d",
			SelectedExcluded: "#fdd0a2",
			HoveredIncluded:  "#3182bd",
			Included:         "#4a4a4a",
			Excluded:         "#4a4a4a",
		},
		Background:  "#ffffff",
		Frame:       "#cccccc",
		Text:        "#333333",
		Axis:        "#666666",
		InsideLabel: "#ffffff",
		Tooltip:     "#222222",
	}
}

// Fill returns the fill for an element of kind k in state s.
func (p Palette) Fill(k Kind, s CellState) string {
	w := p.swatch(k)
	switch s.Tier() {
	case TierSelectedIncluded:
		return w.SelectedIncluded
	case TierSelectedExcluded:
		return w.SelectedExcluded
	case TierHoveredIncluded:
		return w.HoveredIncluded
	}
	if s.Included {
		return w.Included
	}
	return w.Excluded
}

func (p Palette) swatch(k Kind) Swatch {
	switch k {
	case KindDot:
		return p.Dot
	case KindBar:
		return p.Bar
	default:
		return p.Cell
	}
}

// Merge returns p with every non-empty color of o applied on top.
func (p Palette) Merge(o Palette) Palette {
	p.Cell = p.Cell.merge(o.Cell)
	p.Dot = p.Dot.merge(o.Dot)
	p.Bar = p.Bar.merge(o.Bar)
	set(&p.Background, o.Background)
	set(&p.Frame, o.Frame)
	set(&p.Text, o.Text)
	set(&p.Axis, o.Axis)
	set(&p.InsideLabel, o.InsideLabel)
	set(&p.Tooltip, o.Tooltip)
	return p
}

func (w Swatch) merge(o Swatch) Swatch {
	set(&w.SelectedIncluded, o.SelectedIncluded)
	set(&w.SelectedExcluded, o.SelectedExcluded)
	set(&w.HoveredIncluded, o.HoveredIncluded)
	set(&w.Included, o.Included)
	set(&w.Excluded, o.Excluded)
	return w
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
