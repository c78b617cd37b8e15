// Package pipeline provides the render pipeline for upset plots.
//
// This package implements the complete parse → layout → draw → render
// pipeline used by the CLI and the chart server, so both produce identical
// artifacts for identical inputs.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: read the tab-separated input into a [matrix.Matrix]
//  2. Layout: compute geometry for the requested pixel budget
//  3. Draw: turn the layout into a scene for the initial selection
//  4. Render: serialize the scene to SVG, PNG and JSON concurrently
//
// Layouts and artifacts are cached by the hash of the input and the options
// that affect them.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "sets.tsv",
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/upset/pkg/cache"
	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/layout"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// DefaultPNGScale is the default PNG scale factor.
const DefaultPNGScale = 1.0

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input: Reader wins over Content, Content over Path. Path "-" is stdin;
	// http(s) paths are downloaded.
	Path    string    `json:"path,omitempty"`
	Content string    `json:"content,omitempty"`
	Name    string    `json:"name,omitempty"`
	Reader  io.Reader `json:"-"`

	// Layout options
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`

	// Render options
	Formats  []string       `json:"formats,omitempty"`
	Selected []string       `json:"selected,omitempty"`
	Palette  styles.Palette `json:"palette"`
	Scale    float64        `json:"scale,omitempty"`    // PNG scale factor
	Static   bool           `json:"static,omitempty"`   // SVG without script
	Endpoint string         `json:"endpoint,omitempty"` // SVG click endpoint
	Refresh  bool           `json:"refresh,omitempty"`  // bypass cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Name is the display name of the input.
	Name string

	// InputHash is the content hash of the raw input.
	InputHash string

	// Matrix is the parsed model.
	Matrix matrix.Matrix

	// Warnings lists the input lines that were skipped.
	Warnings []matrix.Warning

	// Layout is the computed geometry. It is zero when Empty is set.
	Layout layout.Layout

	// Empty is set when there was nothing to draw.
	Empty bool

	// Scene is the drawn chart.
	Scene upset.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SetCount          int
	IntersectionCount int
	ParseTime         time.Duration
	LayoutTime        time.Duration
	RenderTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if format == "pdf" {
		return errors.New(errors.ErrCodeUnsupported, "pdf output is not supported; use svg or png")
	}
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that an input is given.
func (o *Options) ValidateForParse() error {
	if o.Reader == nil && o.Content == "" && o.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "an input file is required")
	}
	if o.Name == "" {
		o.Name = InputName(o.Path)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	lo := o.LayoutOptions()
	lo.SetDefaults()
	o.Width, o.Height, o.FontSize = lo.Width, lo.Height, lo.FontSize
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return errors.ValidateDimensions(o.Width, o.Height, o.FontSize)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive")
	}
	return ValidateFormats(o.Formats)
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{Width: o.Width, Height: o.Height, FontSize: o.FontSize}
}

// PaletteHash identifies the palette overrides in cache keys.
func (o *Options) PaletteHash() string {
	if o.Palette == (styles.Palette{}) {
		return ""
	}
	h, _ := cache.HashJSON(o.Palette)
	return h
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:    o.Width,
		Height:   o.Height,
		FontSize: o.FontSize,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		LayoutKeyOpts: o.LayoutKeyOpts(),
		Format:        format,
		Selected:      slices.Sorted(slices.Values(o.Selected)),
		Palette:       o.PaletteHash(),
	}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatSVG:
		k.Static = o.Static
		if o.Endpoint != "" {
			k.Palette += "|" + o.Endpoint
		}
	}
	return k
}
