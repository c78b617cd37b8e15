package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/upset/pkg/httputil"
	"github.com/matzehuels/upset/pkg/pipeline"
)

// renderFlags holds flags for the render command.
type renderFlags struct {
	output   string
	formats  string
	width    float64
	height   float64
	fontSize float64
	selected []string
	scale    float64
	static   bool
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an upset plot from a TSV file",
		Long: `Render an upset plot from a tab-separated file of intersection counts.

Each line holds a comma-joined intersection key and its count, separated
by a tab. Blank lines and lines starting with "#" are skipped:

	# sets
	A	12
	A,B	7

Use "-" to read from stdin. http(s) URLs are downloaded and cached.`,
		Example: `  upset render sets.tsv
  upset render sets.tsv -f svg,png --width 1200 --height 500
  upset render sets.tsv --select A,B -o highlighted.svg
  cat sets.tsv | upset render - -o out.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "chart width in pixels (default 800)")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "chart height in pixels (default 600)")
	cmd.Flags().Float64Var(&flags.fontSize, "font-size", 0, "base font size in pixels (default 12)")
	cmd.Flags().StringArrayVar(&flags.selected, "select", nil, "highlight an intersection key (repeatable)")
	cmd.Flags().Float64Var(&flags.scale, "scale", 0, "PNG scale factor (default 1)")
	cmd.Flags().BoolVar(&flags.static, "static", false, "omit the interaction script from SVG output")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")

	return cmd
}

// runRender executes the render pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, flags renderFlags) error {
	opts := pipeline.Options{
		Path:     input,
		Width:    flags.width,
		Height:   flags.height,
		FontSize: flags.fontSize,
		Formats:  parseFormats(flags.formats),
		Selected: flags.selected,
		Scale:    flags.scale,
		Static:   flags.static,
		Refresh:  flags.refresh,
		Logger:   c.Logger,
	}
	c.setCLIDefaults(&opts)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+pipeline.InputName(input)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		printWarning("%s", w.String())
	}
	if result.Empty {
		printWarning("No intersections to draw")
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, flags.output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", result.Name)
	printStats(result.Stats.SetCount, result.Stats.IntersectionCount, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes each format to disk and returns the paths written,
// in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(output, input, format, len(formats) > 1)
		if err := writeFile(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath derives the file for one format. A single format uses output
// as given; multiple formats use it as a base path.
func outputPath(output, input, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath strips a known format extension from output, or derives a base
// from the input name when output is empty.
func basePath(output, input string) string {
	if output == "" {
		name := input
		if name == "-" || httputil.IsURL(name) {
			name = pipeline.InputName(input)
		}
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
