package overlap

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/matrix"
)

// Options configures overlap diagram rendering.
type Options struct {
	// Detailed adds set totals to node labels and weights to edge labels.
	// When false, only set names are shown.
	Detailed bool
}

// Edge is the overlap between two sets.
type Edge struct {
	From, To string
	Weight   int
}

// Edges returns every pair of sets with a positive overlap, ordered by the
// column order of the first set and then the second.
func Edges(m matrix.Matrix) []Edge {
	sets := m.Sets()
	col := make(map[string]int, len(sets))
	for i, s := range sets {
		col[s] = i
	}
	n := len(sets)
	weights := make([]int, n*n)
	for _, in := range m.Intersections() {
		comps := uniqueColumns(in.Components(), col)
		for a := range comps {
			for b := a + 1; b < len(comps); b++ {
				i, j := min(comps[a], comps[b]), max(comps[a], comps[b])
				weights[i*n+j] += in.Value
			}
		}
	}
	var edges []Edge
	for i := range n {
		for j := i + 1; j < n; j++ {
			if w := weights[i*n+j]; w > 0 {
				edges = append(edges, Edge{From: sets[i], To: sets[j], Weight: w})
			}
		}
	}
	return edges
}

// Totals returns the summed value of the intersections containing each set.
func Totals(m matrix.Matrix) map[string]int {
	totals := make(map[string]int, m.SetCount())
	for _, s := range m.Sets() {
		totals[s] = 0
	}
	for _, in := range m.Intersections() {
		seen := map[string]bool{}
		for _, c := range in.Components() {
			if !seen[c] {
				seen[c] = true
				totals[c] += in.Value
			}
		}
	}
	return totals
}

func uniqueColumns(comps []string, col map[string]int) []int {
	seen := make(map[int]bool, len(comps))
	out := make([]int, 0, len(comps))
	for _, c := range comps {
		i, ok := col[c]
		if ok && !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

// ToDOT converts a model to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(m matrix.Matrix, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=\"#f4f4f4\", color=\"#333333\", fontsize=16];\n")
	buf.WriteString("  edge [color=\"#4a4a4a\"];\n")
	buf.WriteString("\n")

	totals := Totals(m)
	for _, s := range m.Sets() {
		label := s
		if opts.Detailed {
			label = fmt.Sprintf("%s\n%d", s, totals[s])
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", s, label)
	}

	edges := Edges(m)
	maxW := 0
	for _, e := range edges {
		maxW = max(maxW, e.Weight)
	}
	if len(edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range edges {
		attrs := []string{fmt.Sprintf("penwidth=%.2f", penWidth(e.Weight, maxW))}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", strconv.Itoa(e.Weight)))
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// penWidth maps a weight onto 1..6 points.
func penWidth(w, maxW int) float64 {
	if maxW <= 0 {
		return 1
	}
	return 1 + 5*float64(w)/float64(maxW)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales like the upset sink output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
