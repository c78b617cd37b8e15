package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/upset/pkg/cache"
	"github.com/matzehuels/upset/pkg/httputil"
	"github.com/matzehuels/upset/pkg/interact"
	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/observability"
	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/layout"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ArtifactTTL overrides [cache.TTLArtifact] when positive.
	ArtifactTTL time.Duration

	// Fetcher downloads http(s) inputs. Nil means uncached downloads.
	Fetcher *httputil.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → draw → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Name:      opts.Name,
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	data, err := ReadInput(ctx, opts, r.Fetcher)
	if err != nil {
		return nil, err
	}
	result.InputHash = cache.Hash(data)
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Name)
	parsed, err := ParseContent(data)
	result.Stats.ParseTime = time.Since(parseStart)
	if err != nil {
		hooks.OnParseComplete(ctx, opts.Name, 0, 0, result.Stats.ParseTime, err)
		return nil, fmt.Errorf("parse: %w", err)
	}
	hooks.OnParseComplete(ctx, opts.Name, parsed.Matrix.IntersectionCount(), len(parsed.Warnings), result.Stats.ParseTime, nil)
	result.Matrix = parsed.Matrix
	result.Warnings = parsed.Warnings
	result.Stats.SetCount = parsed.Matrix.SetCount()
	result.Stats.IntersectionCount = parsed.Matrix.IntersectionCount()

	for _, w := range parsed.Warnings {
		r.Logger.Warn("skipped line", "file", opts.Name, "line", w.Line, "reason", w.Err)
	}
	r.Logger.Info("parsed input",
		"sets", result.Stats.SetCount,
		"intersections", result.Stats.IntersectionCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, result.InputHash, parsed.Matrix, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	switch {
	case stderrors.Is(err, layout.ErrEmpty):
		result.Empty = true
		r.Logger.Info("nothing to draw", "file", opts.Name)
	case err != nil:
		return nil, fmt.Errorf("layout: %w", err)
	default:
		result.Layout = l
		result.CacheInfo.LayoutHit = layoutHit
		r.Logger.Info("computed layout",
			"rows", len(l.Rows),
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Draw
	result.Scene = r.Draw(result, opts)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.InputHash, result.Scene, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit info.
// inputHash identifies the raw input m was parsed from.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, inputHash string, m matrix.Matrix, opts Options) (layout.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}
	hooks := observability.Pipeline()
	if m.IsEmpty() {
		return layout.Layout{}, false, layout.ErrEmpty
	}

	cacheKey := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Layout
			if err := json.Unmarshal(data, &cached); err == nil && !cached.Empty() {
				observability.Cache().OnCacheHit(ctx, cacheKey)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, cacheKey)
	}

	start := time.Now()
	hooks.OnLayoutStart(ctx, m.SetCount(), m.IntersectionCount())
	l, err := layout.Compute(m, opts.LayoutOptions())
	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}

	if data, err := json.Marshal(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return l, false, nil
}

// Draw builds the scene for a parsed result with the initial selection in opts.
func (r *Runner) Draw(result *Result, opts Options) upset.Scene {
	palette := styles.DefaultPalette().Merge(opts.Palette)
	if result.Empty {
		return upset.EmptyScene(opts.Width, opts.Height, upset.WithPalette(palette))
	}
	st := interact.State{}.WithSelected(opts.Selected...)
	return upset.Draw(result.Layout, result.Matrix, st, upset.WithPalette(palette))
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The hit is reported only when every requested format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, inputHash string, s upset.Scene, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, cacheKey)
				break
			}
			observability.Cache().OnCacheHit(ctx, cacheKey)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := RenderScene(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.artifactTTL()); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) artifactTTL() time.Duration {
	if r.ArtifactTTL > 0 {
		return r.ArtifactTTL
	}
	return cache.TTLArtifact
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
