package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/pipeline"
	"github.com/matzehuels/upset/pkg/render/overlap"
	"github.com/matzehuels/upset/pkg/render/upset/layout"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		width, height, fontSize float64
		showLayout              bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the parsed sets and intersections of a TSV file",
		Long: `Inspect parses a file without rendering it. It lists every intersection
with its count, the per-set totals and any skipped lines. With --layout it
also reports the label and sizing decisions a render would make.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Path: args[0], Width: width, Height: height, FontSize: fontSize, Logger: c.Logger}
			c.setCLIDefaults(&opts)
			return c.runInspect(cmd.Context(), opts, showLayout)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "chart width for --layout")
	cmd.Flags().Float64Var(&height, "height", 0, "chart height for --layout")
	cmd.Flags().Float64Var(&fontSize, "font-size", 0, "base font size for --layout")
	cmd.Flags().BoolVar(&showLayout, "layout", false, "report layout decisions")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, showLayout bool) error {
	data, err := pipeline.ReadInput(ctx, opts, c.newFetcher(false))
	if err != nil {
		return err
	}
	res, err := pipeline.ParseContent(data)
	if err != nil {
		return err
	}

	name := pipeline.InputName(opts.Path)
	fmt.Fprintln(out, StyleTitle.Render(name))
	fmt.Fprintln(out, statsLine(res.Matrix.SetCount(), res.Matrix.IntersectionCount(), false))
	fmt.Fprintln(out)

	if res.Matrix.IsEmpty() {
		printInfo("Nothing to draw")
	} else {
		fmt.Fprintln(out, intersectionTable(res.Matrix))
		fmt.Fprintln(out)
		fmt.Fprintln(out, setTotalsTable(res.Matrix))
	}

	for _, w := range res.Warnings {
		printWarning("%s", w.String())
	}

	if showLayout && !res.Matrix.IsEmpty() {
		l, err := layout.Compute(res.Matrix, opts.LayoutOptions())
		if err != nil {
			printWarning("%v", err)
			return nil
		}
		fmt.Fprintln(out)
		printLayoutSummary(l)
	}
	return nil
}

// intersectionTable renders one row per intersection in input order, with
// a dot per member set.
func intersectionTable(m matrix.Matrix) string {
	sets := m.Sets()
	headers := append([]string{"Key"}, sets...)
	headers = append(headers, "Count")

	rows := make([][]string, 0, m.IntersectionCount())
	for _, in := range m.Intersections() {
		row := []string{in.Key}
		for _, s := range sets {
			cell := "·"
			if m.IsSetInIntersection(s, in.Key) {
				cell = "●"
			}
			row = append(row, cell)
		}
		rows = append(rows, append(row, strconv.Itoa(in.Value)))
	}

	last := len(headers) - 1
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == last:
				return StyleNumber.Align(lipgloss.Right)
			case col > 0:
				return StyleValue.Align(lipgloss.Center)
			}
			return StyleValue
		}).
		Render()
}

// setTotalsTable renders the summed count of every intersection each set
// takes part in, largest first.
func setTotalsTable(m matrix.Matrix) string {
	totals := overlap.Totals(m)
	sets := m.Sets()
	sort.SliceStable(sets, func(i, j int) bool { return totals[sets[i]] > totals[sets[j]] })

	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		rows = append(rows, []string{s, strconv.Itoa(totals[s])})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Set", "Total").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return StyleNumber.Align(lipgloss.Right)
			}
			return StyleValue
		}).
		Render()
}

func printLayoutSummary(l layout.Layout) {
	printKeyValue("Size", fmt.Sprintf("%gx%g", l.Width, l.Height))
	printKeyValue("Font", fmt.Sprintf("%gpx (labels %gpx)", l.FontSize, l.LabelFontSize))
	printKeyValue("Cell", fmt.Sprintf("%.1fx%.1f", l.CellWidth, l.RowHeight))
	rotation := "none"
	if l.Labels.Rotate {
		rotation = fmt.Sprintf("%g°", l.Labels.Angle)
	}
	printKeyValue("Set labels", rotation)

	var truncated []string
	for _, r := range l.Rows {
		if r.Truncated {
			truncated = append(truncated, r.Key)
		}
	}
	if l.Labels.MaxRowLabelChars == 0 {
		printKeyValue("Row labels", "hidden")
	} else if len(truncated) > 0 {
		printKeyValue("Row labels", "truncated: "+strings.Join(truncated, " "))
	} else {
		printKeyValue("Row labels", "full")
	}

	ticks := make([]string, len(l.Ticks))
	for i, t := range l.Ticks {
		ticks[i] = t.Label
	}
	printKeyValue("Axis ticks", strings.Join(ticks, " "))
}
