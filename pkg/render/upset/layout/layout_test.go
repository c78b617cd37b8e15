package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/upset/pkg/matrix"
)

const tol = 1e-9

func scenarioA() matrix.Matrix {
	return matrix.New().
		WithIntersection("SetA", 120).
		WithIntersection("SetB", 150).
		WithIntersection("SetA,SetB", 45)
}

func TestComputeGeometry(t *testing.T) {
	l, err := Compute(scenarioA(), Options{Width: 800, Height: 600, FontSize: 12})
	require.NoError(t, err)

	assert.Equal(t, Margins{Top: 30, Right: 80, Bottom: 10, Left: 120}, l.Margins)
	assert.InDelta(t, 600, l.ChartWidth, tol)
	assert.InDelta(t, 560, l.ChartHeight, tol)
	assert.InDelta(t, 12, l.LabelFontSize, tol)
	assert.InDelta(t, 44.8, l.LabelRowHeight, tol)

	assert.InDelta(t, 300, l.Matrix.W, tol)
	assert.InDelta(t, 15, l.Spacer, tol)
	assert.InDelta(t, 435, l.Bars.X, tol)
	assert.InDelta(t, 245, l.Bars.W, tol)

	assert.InDelta(t, 150, l.CellWidth, tol)
	assert.InDelta(t, 30, l.RowHeight, tol)
	assert.Equal(t, 14, l.Labels.MaxRowLabelChars)
	assert.False(t, l.Labels.Rotate)

	require.Len(t, l.Rows, 3)
	assert.InDelta(t, 196, l.Rows[0].BarWidth, tol)
	assert.InDelta(t, 245, l.Rows[1].BarWidth, tol)
	assert.InDelta(t, 73.5, l.Rows[2].BarWidth, tol)
	assert.Equal(t, "SetA,SetB", l.Rows[2].Key)
	assert.InDelta(t, 30+44.8+60, l.Rows[2].Y, tol)

	require.Len(t, l.Columns, 2)
	assert.Equal(t, "SetB", l.Columns[1].Set)
	assert.InDelta(t, 120+150+75, l.Columns[1].CenterX, tol)
}

func TestComputeEmpty(t *testing.T) {
	tests := []struct {
		name string
		m    matrix.Matrix
		opts Options
	}{
		{"no rows", matrix.New(), Options{Width: 800, Height: 600, FontSize: 12}},
		{"sets without rows", matrix.New().WithSet("A"), Options{Width: 800, Height: 600, FontSize: 12}},
		{"zero width", scenarioA(), Options{Width: 0, Height: 600, FontSize: 12}},
		{"too narrow", scenarioA(), Options{Width: 150, Height: 600, FontSize: 12}},
		{"too short", scenarioA(), Options{Width: 800, Height: 35, FontSize: 12}},
		{"negative", scenarioA(), Options{Width: -800, Height: 600, FontSize: 12}},
		{"infinite", scenarioA(), Options{Width: math.Inf(1), Height: 600, FontSize: 12}},
		{"nan font", scenarioA(), Options{Width: 800, Height: 600, FontSize: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.m, tt.opts)
			assert.True(t, errors.Is(err, ErrEmpty), "err = %v", err)
			assert.True(t, l.Empty())
		})
	}
}

func TestCellWidthAndRowHeightInvariants(t *testing.T) {
	for _, sets := range []int{1, 3, 7, 25} {
		for _, rows := range []int{1, 2, 10, 80} {
			for _, height := range []float64{200, 600, 5000} {
				t.Run(fmt.Sprintf("s%d-r%d-h%.0f", sets, rows, height), func(t *testing.T) {
					b := matrix.NewBuilder()
					for s := 0; s < sets; s++ {
						b.AddSet(fmt.Sprintf("S%d", s))
					}
					for r := 0; r < rows; r++ {
						b.AddIntersection(fmt.Sprintf("S%d", r%sets), r+1)
					}
					l, err := Compute(b.Build(), Options{Width: 1000, Height: height, FontSize: 12})
					require.NoError(t, err)

					assert.InDelta(t, l.Matrix.W/float64(sets), l.CellWidth, tol)
					assert.LessOrEqual(t, l.RowHeight, MaxRowHeight)
					for i := 1; i < len(l.Columns); i++ {
						assert.InDelta(t, l.CellWidth, l.Columns[i].X-l.Columns[i-1].X, tol)
					}
				})
			}
		}
	}
}

func TestRowHeightShrinksWithManyRows(t *testing.T) {
	b := matrix.NewBuilder()
	for i := 0; i < 100; i++ {
		b.AddIntersection("A", i)
	}
	l, err := Compute(b.Build(), Options{Width: 800, Height: 600, FontSize: 12})
	require.NoError(t, err)
	assert.InDelta(t, (560-44.8)/100, l.RowHeight, tol)
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		font   float64
		maxLen int
		want   float64
	}{
		{12, 4, 12},
		{10, 4, 10},
		{16, 8, 12},
		{12, 16, 10},
		{12, 40, 8},
		{12, 200, 8},
		{6, 40, 6},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%d", tt.font, tt.maxLen), func(t *testing.T) {
			assert.InDelta(t, tt.want, LabelFontSize(tt.font, tt.maxLen), tol)
		})
	}
}

func TestComputeLabelPolicy(t *testing.T) {
	tests := []struct {
		name       string
		cellWidth  float64
		sets       int
		wantRotate bool
	}{
		{"wide cells", 50, 10, false},
		{"narrow but few sets", 10, 5, false},
		{"narrow and many sets", 19.9, 6, true},
		{"exact threshold", 20, 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeLabelPolicy(tt.cellWidth, tt.sets, 120, 12)
			assert.Equal(t, tt.wantRotate, p.Rotate)
			if tt.wantRotate {
				assert.Equal(t, -45.0, p.Angle)
				assert.Equal(t, AnchorEnd, p.Anchor)
			} else {
				assert.Equal(t, AnchorMiddle, p.Anchor)
			}
		})
	}

	assert.Equal(t, 7, ComputeLabelPolicy(50, 2, 70, 12).MaxRowLabelChars)
	assert.Equal(t, 0, ComputeLabelPolicy(50, 2, 10, 12).MaxRowLabelChars)
}

func TestComputeRotatesManySets(t *testing.T) {
	b := matrix.NewBuilder()
	for i := 0; i < 20; i++ {
		b.AddIntersection(fmt.Sprintf("S%02d", i), i+1)
	}
	l, err := Compute(b.Build(), Options{Width: 800, Height: 600, FontSize: 12})
	require.NoError(t, err)
	assert.InDelta(t, 15, l.CellWidth, tol)
	assert.True(t, l.Labels.Rotate)
}

func TestTruncateLabel(t *testing.T) {
	got, truncated := TruncateLabel("SetA,SetB", 14)
	assert.Equal(t, "SetA,SetB", got)
	assert.False(t, truncated)

	got, truncated = TruncateLabel("Alpha,Beta,Gamma,Delta", 10)
	assert.Equal(t, "Alpha,Beta"+Ellipsis, got)
	assert.True(t, truncated)

	got, _ = TruncateLabel("ééééé", 2)
	assert.Equal(t, "éé"+Ellipsis, got)
}

func TestRowLabelsTruncatedWithFullTitle(t *testing.T) {
	key := strings.Repeat("LongSetName,", 4) + "End"
	l, err := Compute(matrix.New().WithIntersection(key, 3), Options{Width: 800, Height: 600, FontSize: 12})
	require.NoError(t, err)
	r := l.Rows[0]
	assert.True(t, r.Truncated)
	assert.Equal(t, key, r.Title)
	assert.Equal(t, 14+1, len([]rune(r.Label)))
}

func TestValueLabelFlipsInsideOnOverflow(t *testing.T) {
	m := matrix.New().WithIntersection("A", 1234567).WithIntersection("B", 10)
	l, err := Compute(m, Options{Width: 800, Height: 600, FontSize: 12})
	require.NoError(t, err)

	long := l.Rows[0]
	assert.True(t, long.ValueInside)
	assert.InDelta(t, l.Bars.X+long.BarWidth-4, long.ValueX, tol)

	short := l.Rows[1]
	assert.False(t, short.ValueInside)
	assert.InDelta(t, l.Bars.X+short.BarWidth+4, short.ValueX, tol)
}

func TestBarScale(t *testing.T) {
	s := NewBarScale(200, 100)
	assert.InDelta(t, 0, s.Map(0), tol)
	assert.InDelta(t, 50, s.Map(100), tol)
	assert.InDelta(t, 100, s.Map(200), tol)
	assert.InDelta(t, 100, s.Map(400), tol)

	zero := NewBarScale(0, 100)
	assert.InDelta(t, 0, zero.Map(0), tol)
	assert.Equal(t, []Tick{{Value: 0, X: 10, Label: "0"}}, zero.Ticks(MaxTicks, 10))
}

func TestTicks(t *testing.T) {
	for _, maxVal := range []int{1, 7, 150, 999, 12345, 4_000_000} {
		t.Run(fmt.Sprint(maxVal), func(t *testing.T) {
			s := NewBarScale(maxVal, 300)
			ticks := s.Ticks(MaxTicks, 50)
			require.NotEmpty(t, ticks)
			assert.LessOrEqual(t, len(ticks), MaxTicks)
			for i, tk := range ticks {
				assert.Equal(t, math.Trunc(tk.Value), tk.Value, "integral tick")
				assert.GreaterOrEqual(t, tk.X, 50.0)
				assert.LessOrEqual(t, tk.X, 350.0+tol)
				if i > 0 {
					assert.Greater(t, tk.Value, ticks[i-1].Value)
				}
			}
		})
	}
}

func TestTicksDensest(t *testing.T) {
	tests := []struct {
		max  int
		want []float64
	}{
		{1, []float64{0, 1}},
		{4, []float64{0, 1, 2, 3, 4}},
		{7, []float64{0, 2, 4, 6}},
		{150, []float64{0, 50, 100, 150}},
		{999, []float64{0, 200, 400, 600, 800}},
		{12345, []float64{0, 5000, 10000}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.max), func(t *testing.T) {
			var got []float64
			for _, tk := range NewBarScale(tt.max, 300).Ticks(MaxTicks, 0) {
				got = append(got, tk.Value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSI(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{950, "950"},
		{1000, "1k"},
		{1500, "1.5k"},
		{25000, "25k"},
		{2_000_000, "2M"},
		{3.25e9, "3.25G"},
		{-1500, "-1.5k"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSI(tt.in), "FormatSI(%v)", tt.in)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	opts := Options{Width: 1024, Height: 768, FontSize: 11}
	a, err := Compute(scenarioA(), opts)
	require.NoError(t, err)
	b, err := Compute(scenarioA(), opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	assert.Equal(t, Options{Width: DefaultWidth, Height: DefaultHeight, FontSize: DefaultFontSize}, o)

	o = Options{Width: 300}
	o.SetDefaults()
	assert.Equal(t, 300.0, o.Width)
}
