package raster

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. The package stays silent until a
// caller hands it a logger.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var logp atomic.Pointer[slog.Logger]

func init() {
	logp.Store(slog.New(nopHandler{}))
}

// SetLogger routes the package's load and save diagnostics to l. A nil
// l restores the silent default. Safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logp.Store(l)
}

// Logger returns the logger currently in use.
func Logger() *slog.Logger {
	return logp.Load()
}
