package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/upset/pkg/observability"
)

const sample = "# sets\nA\t12\nB\t5\nA,B\t7\nA,B,C\t2\nC\tx\n"

// testCLI returns a CLI with isolated config and cache directories and
// captures status output.
func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })

	return New(io.Discard, log.InfoLevel), &buf
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sets.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandSubcommands(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()

	want := []string{"render", "inspect", "explore", "overlap", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCommandConfig(t *testing.T) {
	c, _ := testCLI(t)
	cfg := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[chart]\nwidth = 640\n"), 0o644))

	require.NoError(t, execute(t, c, "--config", cfg, "cache", "path"))
	assert.Equal(t, 640.0, c.Config.Chart.Width)
}

func TestRootCommandMissingConfig(t *testing.T) {
	c, _ := testCLI(t)
	err := execute(t, c, "--config", filepath.Join(t.TempDir(), "nope.toml"), "cache", "path")
	assert.Error(t, err)
}

func TestRootCommandVerbose(t *testing.T) {
	c, _ := testCLI(t)
	t.Cleanup(observability.Reset)
	require.NoError(t, execute(t, c, "-v", "cache", "path"))
	assert.Equal(t, log.DebugLevel, c.Logger.GetLevel())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"svg,png", []string{"svg", "png"}},
		{" svg , json ,", []string{"svg", "json"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFormats(tt.input), tt.input)
	}
}

func TestNewRunnerNoCache(t *testing.T) {
	c, _ := testCLI(t)
	r, err := c.newRunner(context.Background(), true)
	require.NoError(t, err)
	defer r.Close()
	assert.NotNil(t, r.Fetcher)
}
