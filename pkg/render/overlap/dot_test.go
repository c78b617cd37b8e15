package overlap

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/upset/pkg/matrix"
)

func model() matrix.Matrix {
	return matrix.NewBuilder().
		AddIntersection("A", 10).
		AddIntersection("A,B", 5).
		AddIntersection("B,C", 3).
		AddIntersection("A,B,C", 2).
		Build()
}

func TestEdges(t *testing.T) {
	got := Edges(model())
	want := []Edge{
		{"A", "B", 7},
		{"A", "C", 2},
		{"B", "C", 5},
	}
	if len(got) != len(want) {
		t.Fatalf("Edges = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEdgesSkipsZero(t *testing.T) {
	m := matrix.NewBuilder().
		AddIntersection("A,B", 0).
		AddIntersection("C", 4).
		Build()
	if got := Edges(m); len(got) != 0 {
		t.Errorf("Edges = %v, want none", got)
	}
}

func TestTotals(t *testing.T) {
	got := Totals(model())
	want := map[string]int{"A": 17, "B": 10, "C": 5}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Totals[%s] = %d, want %d", k, got[k], v)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(model(), Options{})
	for _, want := range []string{
		"graph G {",
		`"A" [label="A"];`,
		`"A" -- "B" [penwidth=6.00];`,
		`"A" -- "C" [penwidth=2.43];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "->") {
		t.Error("overlap graph must be undirected")
	}
	if dot != ToDOT(model(), Options{}) {
		t.Error("ToDOT should be deterministic")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(model(), Options{Detailed: true})
	if !strings.Contains(dot, `label="A\n17"`) {
		t.Errorf("detailed node label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="7"`) {
		t.Errorf("detailed edge label missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(matrix.New(), Options{})
	if dot != "graph G {\n  rankdir=LR;\n  bgcolor=\"transparent\";\n  node [shape=ellipse, style=filled, fillcolor=\"#f4f4f4\", color=\"#333333\", fontsize=16];\n  edge [color=\"#4a4a4a\"];\n\n}\n" {
		t.Errorf("unexpected empty DOT:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render is slow")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(model(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output is not svg")
	}
}
