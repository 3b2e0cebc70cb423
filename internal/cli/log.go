package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crimescope/pkg/observability"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered q5 (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports pipeline, cache and dataset events to a logger. serve
// installs them so each request's fetches and renders show up at debug
// level.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetDatasetHooks(h)
}

func (h logHooks) OnLoadStart(_ context.Context, chartID string, resources []string) {
	h.logger.Debug("load", "chart", chartID, "resources", strings.Join(resources, ","))
}

func (h logHooks) OnLoadComplete(_ context.Context, chartID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("load failed", "chart", chartID, "error", err)
		return
	}
	h.logger.Debug("loaded", "chart", chartID, "duration", d)
}

func (h logHooks) OnComputeStart(_ context.Context, chartID, mode string) {
	h.logger.Debug("compute", "chart", chartID, "mode", mode)
}

func (h logHooks) OnComputeComplete(_ context.Context, chartID string, marks int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("compute failed", "chart", chartID, "error", err)
		return
	}
	h.logger.Debug("computed", "chart", chartID, "marks", marks, "duration", d)
}

func (h logHooks) OnRenderStart(_ context.Context, chartID string, formats []string) {
	h.logger.Debug("render", "chart", chartID, "formats", strings.Join(formats, ","))
}

func (h logHooks) OnRenderComplete(_ context.Context, chartID string, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "chart", chartID, "error", err)
		return
	}
	h.logger.Debug("rendered", "chart", chartID, "formats", strings.Join(formats, ","), "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnFetchStart(_ context.Context, source, name string) {
	h.logger.Debug("fetch", "source", source, "name", name)
}

func (h logHooks) OnFetchComplete(_ context.Context, source, name string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("fetch failed", "source", source, "name", name, "error", err)
		return
	}
	h.logger.Debug("fetched", "source", source, "name", name, "bytes", size, "duration", d)
}

func (h logHooks) OnInvalidate(_ context.Context, name string) {
	h.logger.Info("invalidated", "name", name)
}
