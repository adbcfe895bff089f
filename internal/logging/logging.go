// Package for context-aware slog handlers

package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey string

const slogFields ctxKey = "slog_fields"

// Handler that pulls attributes appended with AppendCtx out of the
// context and attaches them to every record.
type ContextHandler struct {
	slog.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		for _, v := range attrs {
			r.AddAttrs(v)
		}
	}
	return h.Handler.Handle(ctx, r)
}

// Returns a copy of the parent context carrying the given attribute in
// addition to any previously appended ones.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(slogFields).([]slog.Attr); ok {
		v = append(v, attr)
		return context.WithValue(parent, slogFields, v)
	}

	v := []slog.Attr{attr}
	return context.WithValue(parent, slogFields, v)
}

// Constructs the default logger
func New() *slog.Logger {
	return slog.New(&ContextHandler{
		Handler: slog.NewTextHandler(
			os.Stderr,
			&slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
	})
}

// Handler that discards every record
func NullLogger() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}
