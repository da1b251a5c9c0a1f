package httpserver

import (
	"context"
	"net/http"
	"time"
)

func contextWithStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

// startFromContext returns when RequestID saw the request, or now if it
// did not run.
func startFromContext(r *http.Request) time.Time {
	if t, ok := r.Context().Value(startTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
