package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/upset/pkg/errors"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/sets.tsv", "data/sets"},
		{"", "-", "stdin"},
		{"", "https://example.com/x/sets.tsv", "sets"},
		{"out.svg", "sets.tsv", "out"},
		{"out.png", "sets.tsv", "out"},
		{"out.pdf", "sets.tsv", "out.pdf"},
		{"build/chart", "sets.tsv", "build/chart"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, basePath(tt.output, tt.input), "basePath(%q, %q)", tt.output, tt.input)
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "chart.svg", outputPath("chart.svg", "sets.tsv", "svg", false))
	assert.Equal(t, "sets.png", outputPath("", "sets.tsv", "png", false))
	assert.Equal(t, "chart.png", outputPath("chart.svg", "sets.tsv", "png", true))
	assert.Equal(t, "chart.json", outputPath("chart", "sets.tsv", "json", true))
}

func TestRunRender(t *testing.T) {
	c, buf := testCLI(t)
	input := writeSample(t)
	base := filepath.Join(t.TempDir(), "out", "chart")

	err := execute(t, c, "render", input, "-f", "svg,json", "-o", base, "--width", "400", "--height", "200", "--select", "A,B")
	require.NoError(t, err)

	svg, err := os.ReadFile(base + ".svg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg") || strings.Contains(string(svg), "<svg"))

	js, err := os.ReadFile(base + ".json")
	require.NoError(t, err)
	assert.Contains(t, string(js), "A,B")

	status := buf.String()
	assert.Contains(t, status, "Rendered sets.tsv")
	assert.Contains(t, status, "3 sets")
	assert.Contains(t, status, "4 intersections")
	assert.Contains(t, status, "line 6")
}

func TestRunRenderCached(t *testing.T) {
	c, buf := testCLI(t)
	input := writeSample(t)
	output := filepath.Join(t.TempDir(), "chart.svg")

	require.NoError(t, execute(t, c, "render", input, "-o", output))
	assert.Contains(t, buf.String(), iconFresh)

	buf.Reset()
	require.NoError(t, execute(t, c, "render", input, "-o", output))
	assert.Contains(t, buf.String(), iconCached)

	buf.Reset()
	require.NoError(t, execute(t, c, "render", input, "-o", output, "--refresh"))
	assert.Contains(t, buf.String(), iconFresh)
}

func TestRunRenderInvalidFormat(t *testing.T) {
	c, _ := testCLI(t)
	err := execute(t, c, "render", writeSample(t), "-f", "pdf", "--no-cache")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported), "err = %v", err)
}

func TestRunRenderMissingFile(t *testing.T) {
	c, _ := testCLI(t)
	err := execute(t, c, "render", filepath.Join(t.TempDir(), "missing.tsv"), "--no-cache")
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "err = %v", err)
}

func TestRunRenderEmpty(t *testing.T) {
	c, buf := testCLI(t)
	input := filepath.Join(t.TempDir(), "empty.tsv")
	require.NoError(t, os.WriteFile(input, []byte("# nothing\n"), 0o644))
	output := filepath.Join(t.TempDir(), "empty.svg")

	require.NoError(t, execute(t, c, "render", input, "-o", output, "--no-cache"))
	assert.Contains(t, buf.String(), "No intersections")
	_, err := os.Stat(output)
	assert.NoError(t, err)
}
