package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/upset/pkg/errors"
)

const full = `
[chart]
width = 1000
height = 500
font_size = 14
formats = ["svg", "png"]
scale = 2

[palette]
background = "#000000"

[palette.dot]
included = "#1f77b4"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "72h"

[server]
addr = ":9000"
`

func TestParse(t *testing.T) {
	cfg, err := Parse(full)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, cfg.Chart.Width)
	assert.Equal(t, 500.0, cfg.Chart.Height)
	assert.Equal(t, 14.0, cfg.Chart.FontSize)
	assert.Equal(t, []string{"svg", "png"}, cfg.Chart.Formats)
	assert.Equal(t, "#1f77b4", cfg.Palette.Dot.Included)
	assert.Equal(t, "#000000", cfg.Palette.Background)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 72*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, ":9000", cfg.ServerAddr())
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.ServerAddr())
	assert.Zero(t, cfg.Chart.Width)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[chart\nwidth = 1"},
		{"unknown key", "[chart]\ncolour = \"red\""},
		{"negative width", "[chart]\nwidth = -5"},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"negative scale", "[chart]\nscale = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "code = %s", errors.GetCode(err))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(full), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, cfg.Chart.Width)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadDefaultMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadDefaultPresent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "upset"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upset", "config.toml"), []byte("[server]\naddr = \":1234\"\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":1234", cfg.ServerAddr())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/upset/config.toml", p)
}

func TestCacheOptions(t *testing.T) {
	cfg := Config{Cache: Cache{Backend: "mongo", MongoURI: "mongodb://db"}}
	opts := cfg.CacheOptions("/var/cache/upset")
	assert.Equal(t, "mongo", opts.Backend)
	assert.Equal(t, "mongodb://db", opts.MongoURI)
	assert.Equal(t, "/var/cache/upset", opts.Dir)

	cfg.Cache.Dir = "/srv/cache"
	assert.Equal(t, "/srv/cache", cfg.CacheOptions("/var/cache/upset").Dir)
}
