package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/upset/internal/server"
	"github.com/matzehuels/upset/pkg/chart"
	"github.com/matzehuels/upset/pkg/session"
)

const (
	cleanupInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command, which hosts interactive charts
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		ttl      time.Duration
		pngScale float64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive charts over HTTP",
		Long: `Serve starts an HTTP server that keeps one chart per uploaded file. Charts
render to SVG, PNG or JSON and accept hover, click and resize events. Idle
charts expire after --session-ttl.`,
		Example: `  upset serve --addr :9000
  curl --data-binary @sets.tsv localhost:9000/api/charts/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.ServerAddr()
			}
			return c.runServe(cmd.Context(), addr, ttl, pngScale)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config or :8080)")
	cmd.Flags().DurationVar(&ttl, "session-ttl", session.DefaultTTL, "idle time before a chart is dropped")
	cmd.Flags().Float64Var(&pngScale, "png-scale", 0, "PNG scale factor (default from config or 1)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, ttl time.Duration, pngScale float64) error {
	if pngScale == 0 {
		pngScale = c.Config.Chart.Scale
	}
	store := session.NewStore(ttl, c.Logger)
	defer store.Close()

	cc := c.Config.Chart
	handler := server.New(store, server.Options{
		Defaults: chart.Options{
			Width:    cc.Width,
			Height:   cc.Height,
			FontSize: cc.FontSize,
			Palette:  c.Config.Palette,
		},
		PNGScale: pngScale,
		Logger:   c.Logger,
	})
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.Run(gctx, cleanupInterval)
		return nil
	})
	g.Go(func() error {
		c.Logger.Info("Listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Logger.Info("Shutting down", "sessions", store.Len())
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return err
}
