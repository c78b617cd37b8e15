package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/upset/pkg/pipeline"
	"github.com/matzehuels/upset/pkg/render/overlap"
)

// overlapCommand creates the overlap command, which draws the pairwise
// overlap of sets as a Graphviz network.
func (c *CLI) overlapCommand() *cobra.Command {
	var (
		output   string
		detailed bool
		dotOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "overlap [file]",
		Short: "Render pairwise set overlap as a network diagram",
		Long: `Overlap draws one node per set and one edge per pair of sets that share
intersections. Edge thickness follows the summed count of the shared rows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOverlap(cmd.Context(), args[0], output, overlap.Options{Detailed: detailed}, dotOnly)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>_overlap.svg, or stdout with --dot)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with totals and edges with weights")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "emit Graphviz DOT instead of SVG")

	return cmd
}

func (c *CLI) runOverlap(ctx context.Context, input, output string, opts overlap.Options, dotOnly bool) error {
	prog := newProgress(c.Logger)

	data, err := pipeline.ReadInput(ctx, pipeline.Options{Path: input, Logger: c.Logger}, c.newFetcher(false))
	if err != nil {
		return err
	}
	res, err := pipeline.ParseContent(data)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		c.Logger.Warn("skipped line", "line", w.Line, "text", w.Text)
	}

	dot := overlap.ToDOT(res.Matrix, opts)
	if dotOnly {
		if output == "" {
			_, err := os.Stdout.WriteString(dot)
			return err
		}
		return writeFile(output, []byte(dot))
	}

	svg, err := overlap.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	if output == "" {
		output = basePath("", input) + "_overlap.svg"
	}
	if err := writeFile(output, svg); err != nil {
		return err
	}
	prog.done("Rendered overlap of " + pipeline.InputName(input))
	printFile(output)
	return nil
}
