package logger

import "context"

type (
	loggerKey    struct{}
	requestIDKey struct{}
)

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored by WithLogger, or Default().
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID returns a context carrying the request ID. Loggers built
// by New tag entries logged with this context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID of ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// L returns the context logger bound to ctx. Entries carry the request
// ID of ctx, if any.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
