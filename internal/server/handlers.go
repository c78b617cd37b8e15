package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/upset/pkg/buildinfo"
	"github.com/matzehuels/upset/pkg/chart"
	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/interact"
	"github.com/matzehuels/upset/pkg/matrix"
	"github.com/matzehuels/upset/pkg/observability"
	"github.com/matzehuels/upset/pkg/render/upset"
	"github.com/matzehuels/upset/pkg/render/upset/sink"
	"github.com/matzehuels/upset/pkg/session"
)

// ChartInfo describes a mounted chart.
type ChartInfo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	StatusCode    int      `json:"status_code"`
	Sets          []string `json:"sets"`
	Intersections int      `json:"intersections"`
	Warnings      []string `json:"warnings,omitempty"`
	Error         string   `json:"error,omitempty"`
	Selected      []string `json:"selected"`
	Hovered       string   `json:"hovered,omitempty"`
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
	FontSize      float64  `json:"font_size"`
}

// EventResponse is returned by pointer and resize endpoints.
type EventResponse struct {
	Update   string        `json:"update"`
	Paints   []upset.Paint `json:"paints,omitempty"`
	Selected []string      `json:"selected"`
	Hovered  string        `json:"hovered,omitempty"`
	Tooltip  string        `json:"tooltip,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type pointerRequest struct {
	Key string  `json:"key"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

type resizeRequest struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"font_size"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"charts":  s.store.Len(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	opts, err := s.chartOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.store.Create(opts)
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := s.load(r, sess, data)
	if err != nil {
		_ = s.store.Delete(sess.ID)
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/charts/"+sess.ID)
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := s.load(r, sess, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// load parses data into sess and waits for this upload's own outcome. A
// failed parse leaves the previous data on screen and is reported as an
// error. An upload overtaken by a newer one is a conflict.
func (s *Server) load(r *http.Request, sess *session.Session, data []byte) (ChartInfo, error) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	out := <-sess.Load(r.Context(), name, bytes.NewReader(data))
	if out.Superseded {
		return ChartInfo{}, errors.New(errors.ErrCodeConflict, "upload %s was superseded by a newer one", name)
	}
	if out.File.Status == matrix.StatusError {
		return ChartInfo{}, out.File.Err
	}

	var info ChartInfo
	err := sess.Do(func(c *chart.Chart) error {
		info = chartInfo(sess.ID, c)
		return nil
	})
	if err != nil {
		return ChartInfo{}, err
	}
	return info, nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, format := splitRef(chi.URLParam(r, "id"))
	sess, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		body        []byte
		contentType string
		info        ChartInfo
	)
	err = sess.Do(func(c *chart.Chart) error {
		var err error
		switch format {
		case "":
			info = chartInfo(id, c)
		case "svg":
			contentType = "image/svg+xml"
			body = sink.RenderSVG(c.Scene(),
				sink.WithEndpoint("/api/charts/"+id),
				sink.WithChartTooltip(c.Tooltip()))
		case "png":
			contentType = "image/png"
			body, err = sink.RenderPNG(c.Scene(), sink.WithScale(s.pngScale))
		case "json":
			contentType = "application/json"
			body, err = sink.RenderJSON(c.Scene())
		default:
			err = errors.New(errors.ErrCodeNotFound, "unknown format %q", format)
		}
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if format == "" {
		writeJSON(w, http.StatusOK, info)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	observability.Server().OnChartEvent(r.Context(), id, "unmount", interact.UpdateNone.String())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if !decode(w, r, &req) {
		return
	}
	s.event(w, r, "hover", func(c *chart.Chart) (interact.Update, error) {
		if req.Key == "" {
			return c.PointerAt(req.X, req.Y), nil
		}
		return c.PointerEnter(req.Key, req.X, req.Y), nil
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if !decode(w, r, &req) {
		return
	}
	s.event(w, r, "move", func(c *chart.Chart) (interact.Update, error) {
		return c.PointerMove(req.X, req.Y), nil
	})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	s.event(w, r, "leave", func(c *chart.Chart) (interact.Update, error) {
		return c.PointerLeave(), nil
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "key is required"))
		return
	}
	s.event(w, r, "click", func(c *chart.Chart) (interact.Update, error) {
		return c.Click(req.Key), nil
	})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !decode(w, r, &req) {
		return
	}
	s.event(w, r, "resize", func(c *chart.Chart) (interact.Update, error) {
		if req.FontSize != 0 {
			if err := c.SetFontSize(req.FontSize); err != nil {
				return interact.UpdateNone, err
			}
		}
		if req.Width != 0 || req.Height != 0 {
			o := c.Options()
			width, height := req.Width, req.Height
			if width == 0 {
				width = o.Width
			}
			if height == 0 {
				height = o.Height
			}
			if err := c.Resize(width, height); err != nil {
				return interact.UpdateNone, err
			}
		}
		return interact.UpdateFull, nil
	})
}

// event runs fn on the chart and reports the resulting update.
func (s *Server) event(w http.ResponseWriter, r *http.Request, name string, fn func(*chart.Chart) (interact.Update, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var resp EventResponse
	err := sess.Do(func(c *chart.Chart) error {
		u, err := fn(c)
		if err != nil {
			return err
		}
		resp = eventResponse(c, u)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	observability.Server().OnChartEvent(r.Context(), sess.ID, name, resp.Update)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

// chartOptions reads width, height, font_size and select query parameters.
func (s *Server) chartOptions(r *http.Request) (chart.Options, error) {
	opts := s.defaults
	opts.Logger = s.logger
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"width", &opts.Width}, {"height", &opts.Height}, {"font_size", &opts.FontSize}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return chart.Options{}, errors.New(errors.ErrCodeInvalidInput, "%s: not a number: %q", p.name, v)
		}
		*p.dst = f
	}
	if sel := q["select"]; len(sel) > 0 {
		opts.Selected = sel
	}
	return opts, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "upload larger than %d bytes", s.maxBody)
		}
		return nil, errors.Wrap(errors.ErrCodeFileRead, err, "read upload")
	}
	return data, nil
}

func chartInfo(id string, c *chart.Chart) ChartInfo {
	f := c.File()
	o := c.Options()
	info := ChartInfo{
		ID:            id,
		Name:          f.Name,
		Status:        c.Status().String(),
		StatusCode:    int(c.Status()),
		Sets:          f.Matrix.Sets(),
		Intersections: f.Matrix.IntersectionCount(),
		Selected:      c.State().Selected(),
		Width:         o.Width,
		Height:        o.Height,
		FontSize:      o.FontSize,
	}
	if info.Sets == nil {
		info.Sets = []string{}
	}
	if info.Selected == nil {
		info.Selected = []string{}
	}
	for _, warn := range f.Warnings {
		info.Warnings = append(info.Warnings, warn.String())
	}
	if err := c.Err(); err != nil {
		info.Error = errors.UserMessage(err)
	}
	if key, ok := c.State().Hovered(); ok {
		info.Hovered = key
	}
	return info
}

func eventResponse(c *chart.Chart, u interact.Update) EventResponse {
	resp := EventResponse{Update: u.String(), Selected: c.State().Selected()}
	if resp.Selected == nil {
		resp.Selected = []string{}
	}
	if u == interact.UpdateRecolor {
		resp.Paints = c.Paints()
	}
	if key, ok := c.State().Hovered(); ok {
		resp.Hovered = key
	}
	if t := c.Tooltip(); t.Visible() {
		resp.Tooltip = t.Text()
	}
	return resp
}

// splitRef splits "id.svg" into id and format.
func splitRef(ref string) (string, string) {
	if i := strings.LastIndexByte(ref, '.'); i > 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if stderrors.Is(err, session.ErrNotFound) || stderrors.Is(err, session.ErrExpired) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}
