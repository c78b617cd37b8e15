// Package server exposes mounted upset charts over HTTP.
//
// A client uploads a tab-separated file to create a chart, then drives it
// with pointer events and fetches the current rendering:
//
//	POST   /api/charts                 upload, returns the chart id
//	GET    /api/charts/{id}            chart status
//	PUT    /api/charts/{id}            replace the data
//	GET    /api/charts/{id}.svg        rendering (also .png, .json)
//	POST   /api/charts/{id}/hover      {"key": "A,B", "x": 10, "y": 20}
//	POST   /api/charts/{id}/move       {"x": 12, "y": 21}
//	POST   /api/charts/{id}/leave
//	POST   /api/charts/{id}/click      {"key": "A,B"}
//	POST   /api/charts/{id}/resize     {"width": 800, "height": 400}
//	DELETE /api/charts/{id}            unmount
//	GET    /healthz
//
// Event responses carry the update kind. For "recolor" they also carry the
// fills to apply; for "full" the client fetches the rendering again.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/upset/pkg/chart"
	"github.com/matzehuels/upset/pkg/observability"
	"github.com/matzehuels/upset/pkg/session"
)

// DefaultMaxUpload caps upload bodies.
const DefaultMaxUpload = 8 << 20

// Options configures a Server.
type Options struct {
	// Defaults apply to every new chart; query parameters override sizes.
	Defaults chart.Options

	// PNGScale is the scale of PNG renderings (default 1).
	PNGScale float64

	MaxUpload int64
	Logger    *log.Logger
}

// Server routes chart requests to sessions.
type Server struct {
	store    *session.Store
	defaults chart.Options
	pngScale float64
	maxBody  int64
	logger   *log.Logger
	router   chi.Router
}

// New returns a server backed by store.
func New(store *session.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.PNGScale <= 0 {
		opts.PNGScale = 1
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	s := &Server{
		store:    store,
		defaults: opts.Defaults,
		pngScale: opts.PNGScale,
		maxBody:  opts.MaxUpload,
		logger:   opts.Logger,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/charts", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleReplace)
		r.Delete("/{id}", s.handleDelete)
		r.Post("/{id}/hover", s.handleHover)
		r.Post("/{id}/move", s.handleMove)
		r.Post("/{id}/leave", s.handleLeave)
		r.Post("/{id}/click", s.handleClick)
		r.Post("/{id}/resize", s.handleResize)
	})
	return r
}

// observe logs each request and fires the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
