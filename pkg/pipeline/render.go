package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/upset/pkg/observability"
	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/sink"
)

// RenderScene serializes s to every format in opts.Formats concurrently.
func RenderScene(ctx context.Context, s upset.Scene, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var (
		mu  sync.Mutex
		out = make(map[string][]byte, len(opts.Formats))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := renderFormat(s, format, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			out[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func renderFormat(s upset.Scene, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(s, svgOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(s, sink.WithScale(opts.Scale))
	case FormatJSON:
		return sink.RenderJSON(s)
	}
	return nil, ValidateFormat(format)
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Static {
		out = append(out, sink.WithStatic())
	}
	if opts.Endpoint != "" {
		out = append(out, sink.WithEndpoint(opts.Endpoint))
	}
	return out
}
