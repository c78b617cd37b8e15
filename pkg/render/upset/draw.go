package upset

import (
	"fmt"

	"github.com/matzehuels/upset/pkg/interact"
	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/render/upset/layout"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

const (
	setLabelGap = 6.0
	rowLabelGap = 6.0
	axisGap     = 4.0
	tickLength  = 4.0
	tickFont    = 0.85
	cellInset   = 1.0
)

type Option func(*drawer)

type drawer struct {
	palette styles.Palette
}

// WithPalette draws with p instead of [styles.DefaultPalette].
func WithPalette(p styles.Palette) Option { return func(d *drawer) { d.palette = p } }

func newDrawer(opts ...Option) drawer {
	d := drawer{palette: styles.DefaultPalette()}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// EmptyScene is the frame drawn when there is no data.
func EmptyScene(width, height float64, opts ...Option) Scene {
	d := newDrawer(opts...)
	return Scene{Width: width, Height: height, Background: d.palette.Background, Palette: d.palette}
}

// Draw renders l for matrix m in interaction state st. An empty layout
// yields an empty scene.
func Draw(l layout.Layout, m matrix.Matrix, st interact.State, opts ...Option) Scene {
	d := newDrawer(opts...)
	s := Scene{Width: l.Width, Height: l.Height, Background: d.palette.Background, Palette: d.palette}
	s.Selected = st.Selected()
	s.Hovered, _ = st.Hovered()
	if l.Empty() {
		return s
	}
	n := len(l.Rows)*(2*len(l.Columns)+4) + len(l.Columns) + 2*len(l.Ticks) + 2
	s.Elements = make([]Element, 0, n)

	s.Elements = append(s.Elements, d.frame(l))
	s.Elements = append(s.Elements, d.setLabels(l)...)
	for i, r := range l.Rows {
		s.Elements = append(s.Elements, d.rowGroup(l, m, st, i, r)...)
	}
	for i, r := range l.Rows {
		s.Elements = append(s.Elements, d.bar(l, st, i, r))
	}
	for i, r := range l.Rows {
		s.Elements = append(s.Elements, d.valueLabel(l, i, r))
	}
	s.Elements = append(s.Elements, d.axis(l)...)
	if l.Labels.MaxRowLabelChars > 0 {
		for i, r := range l.Rows {
			s.Elements = append(s.Elements, d.rowLabel(l, i, r))
		}
	}
	for i, r := range l.Rows {
		s.Elements = append(s.Elements, hit(l, i, r))
	}
	return s
}

func (d drawer) frame(l layout.Layout) Element {
	return Element{
		ID: "frame", Shape: ShapeRect, Role: RoleFrame,
		X: l.Matrix.X, Y: l.Matrix.Y, W: l.Matrix.W, H: l.Matrix.H,
		Fill: "none", Stroke: d.palette.Frame, StrokeWidth: 1,
		Row: -1,
	}
}

func (d drawer) setLabels(l layout.Layout) []Element {
	out := make([]Element, len(l.Columns))
	y := l.Matrix.Y - setLabelGap
	for i, c := range l.Columns {
		e := Element{
			ID: fmt.Sprintf("set-%d", i), Shape: ShapeText, Role: RoleSetLabel,
			X: c.CenterX, Y: y,
			Text: c.Label, Title: c.Set, FontSize: l.LabelFontSize,
			Anchor: l.Labels.Anchor, Fill: d.palette.Text,
			Row: -1, Set: c.Set,
		}
		if l.Labels.Rotate {
			e.Rotate = l.Labels.Angle
		}
		out[i] = e
	}
	return out
}

func (d drawer) rowGroup(l layout.Layout, m matrix.Matrix, st interact.State, row int, r layout.Row) []Element {
	out := make([]Element, 0, 2*len(l.Columns))
	selected, hovered := st.IsSelected(r.Key), st.IsHovered(r.Key)
	for col, c := range l.Columns {
		cs := styles.CellState{Selected: selected, Hovered: hovered, Included: m.IsSetInIntersection(c.Set, r.Key)}
		out = append(out, Element{
			ID: fmt.Sprintf("cell-%d-%d", row, col), Shape: ShapeRect, Role: RoleCell,
			X: c.X + cellInset, Y: r.Y + cellInset, W: l.CellWidth - 2*cellInset, H: l.RowHeight - 2*cellInset,
			Fill: d.palette.Fill(styles.KindCell, cs),
			Row:  row, Key: r.Key, Set: c.Set, Included: cs.Included,
		})
		out = append(out, Element{
			ID: fmt.Sprintf("dot-%d-%d", row, col), Shape: ShapeCircle, Role: RoleDot,
			X: c.CenterX, Y: r.CenterY, R: l.DotRadius,
			Fill: d.palette.Fill(styles.KindDot, cs),
			Row:  row, Key: r.Key, Set: c.Set, Included: cs.Included,
		})
	}
	return out
}

func (d drawer) bar(l layout.Layout, st interact.State, row int, r layout.Row) Element {
	cs := styles.CellState{Selected: st.IsSelected(r.Key), Hovered: st.IsHovered(r.Key), Included: true}
	pad := l.RowHeight * 0.15
	return Element{
		ID: fmt.Sprintf("bar-%d", row), Shape: ShapeRect, Role: RoleBar,
		X: l.Bars.X, Y: r.Y + pad, W: r.BarWidth, H: l.RowHeight - 2*pad,
		Fill: d.palette.Fill(styles.KindBar, cs),
		Row:  row, Key: r.Key, Included: true,
	}
}

func (d drawer) valueLabel(l layout.Layout, row int, r layout.Row) Element {
	e := Element{
		ID: fmt.Sprintf("value-%d", row), Shape: ShapeText, Role: RoleValueLabel,
		X: r.ValueX, Y: r.CenterY, Text: r.ValueLabel, FontSize: l.FontSize,
		Anchor: layout.AnchorStart, Baseline: BaselineMiddle, Fill: d.palette.Text,
		Row: row, Key: r.Key,
	}
	if r.ValueInside {
		e.Anchor = layout.AnchorEnd
		e.Fill = d.palette.InsideLabel
	}
	return e
}

func (d drawer) axis(l layout.Layout) []Element {
	y := l.Bars.Y - axisGap
	out := make([]Element, 0, 1+2*len(l.Ticks))
	out = append(out, Element{
		ID: "axis", Shape: ShapeLine, Role: RoleAxis,
		X: l.Bars.X, Y: y, X2: l.Bars.X + l.Bars.W, Y2: y,
		Stroke: d.palette.Axis, StrokeWidth: 1, Row: -1,
	})
	for i, t := range l.Ticks {
		out = append(out,
			Element{
				ID: fmt.Sprintf("tick-%d", i), Shape: ShapeLine, Role: RoleTick,
				X: t.X, Y: y - tickLength, X2: t.X, Y2: y,
				Stroke: d.palette.Axis, StrokeWidth: 1, Row: -1,
			},
			Element{
				ID: fmt.Sprintf("tick-label-%d", i), Shape: ShapeText, Role: RoleTickLabel,
				X: t.X, Y: y - tickLength - 2, Text: t.Label, FontSize: l.LabelFontSize * tickFont,
				Anchor: layout.AnchorMiddle, Fill: d.palette.Axis, Row: -1,
			})
	}
	return out
}

func (d drawer) rowLabel(l layout.Layout, row int, r layout.Row) Element {
	return Element{
		ID: fmt.Sprintf("label-%d", row), Shape: ShapeText, Role: RoleRowLabel,
		X: l.Matrix.X - rowLabelGap, Y: r.CenterY,
		Text: r.Label, Title: r.Title, FontSize: l.FontSize,
		Anchor: layout.AnchorEnd, Baseline: BaselineMiddle, Fill: d.palette.Text,
		Row: row, Key: r.Key,
	}
}

// hit spans the whole row, from the row label to the value label reserve.
func hit(l layout.Layout, row int, r layout.Row) Element {
	return Element{
		ID: fmt.Sprintf("hit-%d", row), Shape: ShapeRect, Role: RoleHit,
		X: 0, Y: r.Y, W: l.Bars.X + l.Bars.W + layout.ValueLabelReserve, H: l.RowHeight,
		Fill: "transparent", Title: TooltipText(r.Key, r.Value),
		Row: row, Key: r.Key,
	}
}
