package mapgpu

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silentHandler drops every record. Enabled reports false so slog never
// builds the record in the first place, which keeps per-frame Debug
// tracing free when logging is off.
type silentHandler struct{}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h silentHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h silentHandler) WithGroup(string) slog.Handler           { return h }

var silent = slog.New(silentHandler{})

// packageLogger is read by every NewPainter call and may be replaced from
// any goroutine.
var packageLogger atomic.Pointer[slog.Logger]

func init() {
	packageLogger.Store(silent)
}

// SetLogger sets the logger new Painters use when no WithLogger option is
// given. Painters that already exist keep theirs. A nil logger turns
// logging off again, which is the default.
//
// The Painter hands its logger to the components it owns (graphics
// context, shader registry, clip generator):
//   - Debug: render tree of each frame
//   - Info: painter and program creation
//   - Warn: GPU errors in lenient mode, stencil bit overflow
//
// Example:
//
//	mapgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	packageLogger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return packageLogger.Load()
}
