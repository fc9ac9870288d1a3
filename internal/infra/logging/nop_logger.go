package logging

import (
	"context"
	"log/slog"
)

// nopHandler drops every record before it is formatted.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h nopHandler) WithGroup(string) slog.Handler { return h }

// NewNopLogger returns a logger that is disabled at every level.
func NewNopLogger() Logger {
	return slog.New(nopHandler{})
}
