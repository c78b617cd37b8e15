package pipeline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/upset/pkg/cache"
	"github.com/matzehuels/upset/pkg/errors"
)

const sample = "# sets\nA\t10\nB\t20\nA,B\t5\nA,B,C\t2\n"

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
		code    errors.Code
	}{
		{"svg", false, ""},
		{"png", false, ""},
		{"json", false, ""},
		{"pdf", true, errors.ErrCodeUnsupported},
		{"invalid", true, errors.ErrCodeInvalidInput},
		{"SVG", true, errors.ErrCodeInvalidInput}, // case-sensitive
		{"", true, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, tt.code) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), tt.code)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Content: sample}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Width != 800 || opts.Height != 600 || opts.FontSize != 12 {
		t.Errorf("dimensions = %gx%g font %g", opts.Width, opts.Height, opts.FontSize)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Name != "stdin" {
		t.Errorf("Name = %q, want stdin", opts.Name)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no input", Options{}},
		{"negative width", Options{Content: sample, Width: -1}},
		{"bad format", Options{Content: sample, Formats: []string{"gif"}}},
		{"negative scale", Options{Content: sample, Scale: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Width: 800, Height: 400, FontSize: 10, Scale: 2, Selected: []string{"B", "A"}}
	png := opts.ArtifactKeyOpts(FormatPNG)
	if png.Scale != 2 {
		t.Errorf("png Scale = %g, want 2", png.Scale)
	}
	if png.Selected[0] != "A" || png.Selected[1] != "B" {
		t.Errorf("Selected = %v, want sorted", png.Selected)
	}
	if svg := opts.ArtifactKeyOpts(FormatSVG); svg.Scale != 0 {
		t.Errorf("svg key should ignore scale, got %g", svg.Scale)
	}
	if opts.Selected[0] != "B" {
		t.Error("ArtifactKeyOpts must not reorder the caller's selection")
	}
}

func TestExecute(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{
		Content:  sample,
		Name:     "sample.tsv",
		Width:    400,
		Height:   200,
		Formats:  []string{FormatSVG, FormatJSON, FormatPNG},
		Selected: []string{"A,B"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.SetCount != 3 || res.Stats.IntersectionCount != 4 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Empty {
		t.Error("result should not be empty")
	}
	if !res.Scene.IsSelected("A,B") {
		t.Error("initial selection not applied to scene")
	}
	if svg := string(res.Artifacts[FormatSVG]); !strings.HasPrefix(svg, "<svg") {
		t.Errorf("svg artifact = %.40q", svg)
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact missing signature")
	}
	if !bytes.Contains(res.Artifacts[FormatJSON], []byte(`"version": 1`)) {
		t.Error("json artifact missing version")
	}
	if res.InputHash != cache.Hash([]byte(sample)) {
		t.Error("InputHash should hash the raw input")
	}
}

func TestExecuteWarnings(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{Content: "A\t3\nB\tlots\n"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Line != 2 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
	if res.Stats.IntersectionCount != 1 {
		t.Errorf("IntersectionCount = %d, want 1", res.Stats.IntersectionCount)
	}
}

func TestExecuteEmpty(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{Content: "# nothing here\n"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Empty {
		t.Error("expected empty result")
	}
	if !res.Scene.Empty() {
		t.Error("expected empty scene")
	}
	if len(res.Artifacts[FormatSVG]) == 0 {
		t.Error("empty input should still render an svg")
	}
}

func TestExecuteMalformed(t *testing.T) {
	r := quietRunner(nil)
	_, err := r.Execute(context.Background(), Options{Content: "A\t1\textra\n"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteMissingFile(t *testing.T) {
	r := quietRunner(nil)
	_, err := r.Execute(context.Background(), Options{Path: "/nonexistent/sets.tsv"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteReader(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{Reader: strings.NewReader(sample), Name: "upload"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Name != "upload" || res.Stats.SetCount != 3 {
		t.Errorf("Name = %q, sets = %d", res.Name, res.Stats.SetCount)
	}
}

func TestExecuteCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := quietRunner(c)
	defer r.Close()

	opts := Options{Content: sample, Formats: []string{FormatSVG, FormatJSON}}
	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss, got %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit, got %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}
	if len(second.Layout.Rows) != len(first.Layout.Rows) {
		t.Error("cached layout differs from computed layout")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass cache, got %+v", third.CacheInfo)
	}
}

func TestExecuteCacheKeyedBySelection(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := quietRunner(c)

	if _, err := r.Execute(context.Background(), Options{Content: sample}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	res, err := r.Execute(context.Background(), Options{Content: sample, Selected: []string{"A"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.CacheInfo.LayoutHit {
		t.Error("layout should be shared across selections")
	}
	if res.CacheInfo.RenderHit {
		t.Error("artifacts must be keyed by selection")
	}
}

func TestRenderSceneCancelled(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{Content: sample})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderScene(ctx, res.Scene, Options{Formats: []string{FormatSVG}}); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestExecuteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sample)
	}))
	defer srv.Close()

	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{Path: srv.URL + "/remote.tsv"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Name != "remote.tsv" {
		t.Errorf("Name = %q, want remote.tsv", res.Name)
	}
	if res.Stats.SetCount != 3 {
		t.Errorf("SetCount = %d, want 3", res.Stats.SetCount)
	}
}
