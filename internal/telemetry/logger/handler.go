package logger

import (
	"context"
	"log/slog"
)

// RequestIDKey is the attribute key request IDs are logged under.
const RequestIDKey = "request_id"

// contextHandler tags records with the request ID carried by the
// context passed to the *Context logging methods.
type contextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps next so that records logged with a request
// context carry its request ID. Records that already have a request_id
// attribute are left alone.
func NewContextHandler(next slog.Handler) slog.Handler {
	if h, ok := next.(*contextHandler); ok {
		return h
	}
	return &contextHandler{next: next}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestIDFromContext(ctx); id != "" && !hasAttr(r, RequestIDKey) {
		r = r.Clone()
		r.AddAttrs(slog.String(RequestIDKey, id))
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found = true
			return false
		}
		return true
	})
	return found
}
