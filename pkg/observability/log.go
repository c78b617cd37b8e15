package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, and failures at
// error level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

func (h *LogHooks) OnParseStart(_ context.Context, file string) {
	h.logger.Debug("parse start", "file", file)
}

func (h *LogHooks) OnParseComplete(_ context.Context, file string, rows, warnings int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("parse failed", "file", file, "duration", d, "err", err)
		return
	}
	h.logger.Debug("parse done", "file", file, "rows", rows, "warnings", warnings, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, sets, rows int) {
	h.logger.Debug("layout start", "sets", sets, "rows", rows)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	h.logger.Debug("layout done", "duration", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("render failed", "formats", formats, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *LogHooks) OnChartEvent(_ context.Context, chartID, event, update string) {
	h.logger.Debug("chart event", "chart", chartID, "event", event, "update", update)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
