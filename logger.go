package xr

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while the frame waiter goroutine is logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for xr and all its sub-packages.
// By default, xr produces no log output. Pass nil to restore that.
//
// Log levels used by xr:
//   - [slog.LevelDebug]: per-frame diagnostics (predicted display time, image index)
//   - [slog.LevelInfo]: lifecycle events (runtime loaded, session created, state entered)
//   - [slog.LevelWarn]: non-fatal issues (unavailable extension, non-XR fallback, locate failure)
//   - [slog.LevelError]: session creation failure and runtime errors while running
//
// Example:
//
//	xr.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by xr.
// Sub-packages (oxr/, wxr/) call this to share the same logger
// configuration without introducing import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
