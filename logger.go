package math2img

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/math2img/layout"
	"github.com/gogpu/math2img/raster"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with rendering.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for math2img and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by math2img:
//   - [slog.LevelDebug]: per-equation timings, glyph cache statistics
//   - [slog.LevelInfo]: batch summaries
//   - [slog.LevelWarn]: unterminated delimiters, failed equations, timeouts
//
// Example:
//
//	math2img.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	layout.SetLogger(l)
	raster.SetLogger(l)
}

// Logger returns the current logger used by math2img.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
