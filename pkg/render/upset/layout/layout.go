package layout

import (
	"errors"
	"math"

	"github.com/matzehuels/upset/pkg/matrix"
)

// ErrEmpty signals that there is nothing to draw.
var ErrEmpty = errors.New("layout: nothing to draw")

const (
	// DefaultWidth is the default total width in pixels.
	DefaultWidth = 800.0
	// DefaultHeight is the default total height in pixels.
	DefaultHeight = 600.0
	// DefaultFontSize is the default base font size in pixels.
	DefaultFontSize = 12.0
)

const (
	marginTop        = 30.0
	marginBottom     = 10.0
	minMarginRight   = 60.0
	minMarginLeft    = 70.0
	rightMarginRatio = 0.10
	leftMarginRatio  = 0.15

	labelRowFontFactor = 1.5
	labelRowRatio      = 0.08

	matrixRatio = 0.5
	spacerRatio = 0.025

	// ValueLabelReserve is the space kept right of the bar region for value labels.
	ValueLabelReserve = 40.0
	// MaxRowHeight caps the height of one intersection row.
	MaxRowHeight = 30.0
)

// Options is the pixel budget for a layout.
type Options struct {
	Width    float64 // total width in pixels
	Height   float64 // total height in pixels
	FontSize float64 // base font size hint in pixels
}

// SetDefaults fills zero fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
}

// Margins is the space reserved around the chart area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Column is the geometry of one set in the dot matrix.
type Column struct {
	Set     string
	X       float64 // left edge of the cell
	CenterX float64
	Label   string
}

// Row is the geometry of one intersection.
type Row struct {
	Key     string
	Value   int
	Y       float64 // top edge of the row
	CenterY float64

	// Label is the possibly truncated row label; Title is always the full key.
	Label     string
	Title     string
	Truncated bool

	BarWidth float64

	// ValueX is the anchor of the value label. When ValueInside is set the
	// label did not fit after the bar and is drawn inside it, right aligned.
	ValueX      float64
	ValueLabel  string
	ValueInside bool
}

// Layout is the complete geometry of one upset plot.
type Layout struct {
	Width, Height float64
	Margins       Margins

	ChartWidth, ChartHeight float64

	FontSize       float64 // base font, used for row and value labels
	LabelFontSize  float64 // set label font
	LabelRowHeight float64

	Matrix Rect // dot matrix bounds, tight around the rows
	Spacer float64
	Bars   Rect // bar region bounds

	CellWidth float64
	RowHeight float64
	DotRadius float64

	Labels  LabelPolicy
	Scale   BarScale
	Ticks   []Tick
	Columns []Column
	Rows    []Row
}

// Compute lays out m within opts. It returns [ErrEmpty] when m has no sets
// or no rows, or when the budget leaves no room for a chart.
func Compute(m matrix.Matrix, opts Options) (Layout, error) {
	if m.IsEmpty() {
		return Layout{}, ErrEmpty
	}
	if !finitePositive(opts.Width) || !finitePositive(opts.Height) || !finitePositive(opts.FontSize) {
		return Layout{}, ErrEmpty
	}

	margins := Margins{
		Top:    marginTop,
		Bottom: marginBottom,
		Right:  math.Max(minMarginRight, opts.Width*rightMarginRatio),
		Left:   math.Max(minMarginLeft, opts.Width*leftMarginRatio),
	}
	chartW := opts.Width - margins.Left - margins.Right
	chartH := opts.Height - margins.Top - margins.Bottom
	if !finitePositive(chartW) || !finitePositive(chartH) {
		return Layout{}, ErrEmpty
	}

	labelFont := LabelFontSize(opts.FontSize, m.MaxSetNameLength())
	labelRowH := math.Max(labelFont*labelRowFontFactor, chartH*labelRowRatio)
	matrixH := chartH - labelRowH

	matrixW := chartW * matrixRatio
	spacer := chartW * spacerRatio
	barW := chartW - matrixW - spacer - ValueLabelReserve
	if matrixH <= 0 || barW <= 0 {
		return Layout{}, ErrEmpty
	}

	sets := m.Sets()
	rows := m.Intersections()
	cellW := matrixW / float64(len(sets))
	rowH := math.Min(MaxRowHeight, matrixH/float64(len(rows)))

	originX := margins.Left
	originY := margins.Top + labelRowH

	l := Layout{
		Width:          opts.Width,
		Height:         opts.Height,
		Margins:        margins,
		ChartWidth:     chartW,
		ChartHeight:    chartH,
		FontSize:       opts.FontSize,
		LabelFontSize:  labelFont,
		LabelRowHeight: labelRowH,
		Matrix:         Rect{X: originX, Y: originY, W: matrixW, H: rowH * float64(len(rows))},
		Spacer:         spacer,
		Bars:           Rect{X: originX + matrixW + spacer, Y: originY, W: barW, H: rowH * float64(len(rows))},
		CellWidth:      cellW,
		RowHeight:      rowH,
		DotRadius:      dotRadius(cellW, rowH),
		Labels:         ComputeLabelPolicy(cellW, len(sets), margins.Left, opts.FontSize),
		Scale:          NewBarScale(m.MaxIntersectionValue(), barW),
	}
	l.Ticks = l.Scale.Ticks(MaxTicks, l.Bars.X)

	l.Columns = make([]Column, len(sets))
	for i, s := range sets {
		x := originX + float64(i)*cellW
		l.Columns[i] = Column{Set: s, X: x, CenterX: x + cellW/2, Label: s}
	}

	l.Rows = make([]Row, len(rows))
	for i, r := range rows {
		y := originY + float64(i)*rowH
		label, truncated := TruncateLabel(r.Key, l.Labels.MaxRowLabelChars)
		row := Row{
			Key:        r.Key,
			Value:      r.Value,
			Y:          y,
			CenterY:    y + rowH/2,
			Label:      label,
			Title:      r.Key,
			Truncated:  truncated,
			BarWidth:   l.Scale.Map(float64(r.Value)),
			ValueLabel: FormatCount(r.Value),
		}
		placeValueLabel(&row, l.Bars, opts.FontSize)
		l.Rows[i] = row
	}
	return l, nil
}

// Empty reports whether l is the zero Layout returned with [ErrEmpty].
func (l Layout) Empty() bool { return len(l.Rows) == 0 }

// RowIndex returns the index of the first row with key, or -1.
func (l Layout) RowIndex(key string) int {
	for i, r := range l.Rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

const (
	valueLabelGap = 4.0
	dotFill       = 0.35
	maxDotRadius  = 8.0
)

// placeValueLabel puts the label after the bar end, or inside the bar when
// it would overflow the bar region plus the value label reserve.
func placeValueLabel(r *Row, bars Rect, fontSize float64) {
	end := bars.X + r.BarWidth
	width := TextWidth(r.ValueLabel, fontSize)
	limit := bars.X + bars.W + ValueLabelReserve
	if end+valueLabelGap+width > limit && r.BarWidth > width+2*valueLabelGap {
		r.ValueInside = true
		r.ValueX = end - valueLabelGap
		return
	}
	r.ValueX = end + valueLabelGap
}

func dotRadius(cellW, rowH float64) float64 {
	return math.Min(maxDotRadius, math.Min(cellW, rowH)*dotFill)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
