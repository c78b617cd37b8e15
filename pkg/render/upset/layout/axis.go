package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/scale"
)

// MaxTicks bounds the number of axis ticks.
const MaxTicks = 5

// BarScale maps counts to bar widths: domain [0, Max], range [0, Width].
type BarScale struct {
	Max   float64 `json:"max"`
	Width float64 `json:"width"`
}

// Tick is one labelled axis position.
type Tick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// NewBarScale returns the scale for counts up to maxValue drawn in width pixels.
func NewBarScale(maxValue int, width float64) BarScale {
	return BarScale{Max: float64(maxValue), Width: width}
}

func (s BarScale) linear() scale.Linear {
	return scale.Linear{Min: 0, Max: s.Max}
}

// Map returns the bar width for v. A zero domain maps everything to 0.
func (s BarScale) Map(v float64) float64 {
	if s.Max <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, s.linear().Map(v))) * s.Width
}

// tickFactors widen the 1 and 5 steps of a decimal scale to the 1, 2, 5
// sequence: ticks of [0, Max/f] are scaled back up by f.
var tickFactors = []float64{1, 2}

// Ticks returns at most n ticks over the domain, positioned relative to
// originX and labelled with SI abbreviations. It picks the densest 1-2-5
// spacing that fits. Counts are integers, so ticks never fall between
// whole numbers.
func (s BarScale) Ticks(n int, originX float64) []Tick {
	if s.Max <= 0 {
		return []Tick{{Value: 0, X: originX, Label: "0"}}
	}
	var best []float64
	for _, f := range tickFactors {
		lin := scale.Linear{Min: 0, Max: s.Max / f}
		major, _ := lin.Ticks(scale.TickOptions{Max: n, MinLevel: 0, MaxLevel: 1000})
		if len(major) > len(best) {
			best = make([]float64, len(major))
			for i, v := range major {
				best[i] = v * f
			}
		}
	}
	ticks := make([]Tick, 0, len(best))
	for _, v := range best {
		if v < 0 || v > s.Max {
			continue
		}
		ticks = append(ticks, Tick{Value: v, X: originX + s.Map(v), Label: FormatSI(v)})
	}
	return ticks
}

var siPrefixes = []struct {
	exp    int
	symbol string
}{
	{24, "Y"}, {21, "Z"}, {18, "E"}, {15, "P"}, {12, "T"}, {9, "G"}, {6, "M"}, {3, "k"},
}

// FormatSI abbreviates v with an SI prefix, trimming insignificant zeros:
// 950 -> "950", 1500 -> "1.5k", 2000000 -> "2M".
func FormatSI(v float64) string {
	if v == 0 {
		return "0"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	for _, p := range siPrefixes {
		unit := math.Pow10(p.exp)
		if v >= unit {
			return sign + trimFloat(v/unit) + p.symbol
		}
	}
	return sign + trimFloat(v)
}

// FormatCount formats a row value for its label.
func FormatCount(n int) string {
	return strconv.Itoa(n)
}

func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
