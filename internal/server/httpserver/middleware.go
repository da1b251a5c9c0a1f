package httpserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/server/config"
	"github.com/yndnr/statmesh/internal/server/httpserver/handler"
	"github.com/yndnr/statmesh/internal/storage/memory"
	"github.com/yndnr/statmesh/internal/telemetry/logger"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Stat names recorded by Instrument.
const (
	StatRequestsTotal   = "http.requests_total"
	StatRequestDuration = "http.request_duration_ms"
	statResponsesPrefix = "http.responses_"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type startTimeKey struct{}

// RequestID tags each request with an ID, reusing the caller's
// X-Request-ID when present and minting a ULID otherwise.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = ulid.Make().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			ctx = contextWithStart(ctx, time.Now())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover turns a panic into a 500 response.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.Error("panic recovered",
						logger.RequestIDKey, requestIDOf(w, r),
						"error", fmt.Sprint(err),
						"path", r.URL.Path,
					)
					writeError(w, r, domain.ErrInternalServer)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// maxTrackedClients bounds the per-IP limiter table.
const maxTrackedClients = 10000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit allows each client IP requestsPerSecond sustained requests
// with a burst of the same size. A non-positive rate disables the check.
func RateLimit(requestsPerSecond float64) Middleware {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	get := func(ip string, now time.Time) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if c, ok := clients[ip]; ok {
			c.lastSeen = now
			return c.limiter
		}
		if len(clients) >= maxTrackedClients {
			for k, c := range clients {
				if now.Sub(c.lastSeen) > time.Minute {
					delete(clients, k)
				}
			}
		}
		c := &clientLimiter{
			limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
			lastSeen: now,
		}
		clients[ip] = c
		return c.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !get(clientIP(r), time.Now()).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NetworkACL rejects clients outside allowList. An empty list allows
// every client. Entries are IPs or CIDRs.
func NetworkACL(allowList []string, log *slog.Logger) (Middleware, error) {
	prefixes := make([]netip.Prefix, 0, len(allowList))
	for _, entry := range allowList {
		p, err := config.ParseAllowEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("allow list entry %q: %w", entry, err)
		}
		prefixes = append(prefixes, p)
	}

	return func(next http.Handler) http.Handler {
		if len(prefixes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			addr, err := netip.ParseAddr(ip)
			if err == nil {
				addr = addr.Unmap()
				for _, p := range prefixes {
					if p.Contains(addr) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			log.Warn("request denied by network ACL",
				logger.RequestIDKey, logger.RequestIDFromContext(r.Context()),
				"client_ip", ip,
				"path", r.URL.Path,
			)
			writeError(w, r, domain.ErrAdminIPNotAllowed)
		})
	}, nil
}

// Audit logs every completed request. Requests that change state
// (anything but GET and HEAD) log at info, reads at debug.
func Audit(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			attrs := []any{
				logger.RequestIDKey, logger.RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"query", logger.Truncate(r.URL.RawQuery),
				"status", sw.status,
				"duration_ms", time.Since(startFromContext(r)).Milliseconds(),
				"client_ip", clientIP(r),
			}

			switch {
			case sw.status >= 500:
				log.Error("request completed with error", attrs...)
			case sw.status >= 400:
				log.Warn("request completed with client error", attrs...)
			case r.Method != http.MethodGet && r.Method != http.MethodHead:
				log.Info("admin request completed", attrs...)
			default:
				log.Debug("request completed", attrs...)
			}
		})
	}
}

// Instrument records request counts, response classes and latency into
// store. Stat handles are resolved once so requests do not show up in
// the recent lookups.
func Instrument(store *memory.Store) Middleware {
	requests := store.Counter(StatRequestsTotal)
	duration := store.Histogram(StatRequestDuration)
	var classes [5]*memory.Counter
	for i := range classes {
		classes[i] = store.Counter(statResponsesPrefix + strconv.Itoa(i+1) + "xx")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			requests.Inc()
			if class := sw.status / 100; class >= 1 && class <= 5 {
				classes[class-1].Inc()
			}
			duration.RecordValue(float64(time.Since(start).Microseconds()) / 1000)
		})
	}
}

// statusWriter captures the status code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// writeError writes a domain error as the JSON envelope.
func writeError(w http.ResponseWriter, r *http.Request, de *domain.DomainError) {
	resp := handler.NewErrorResponse(requestIDOf(w, r), de)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(handler.ErrorCodeHeader, de.Code)
	w.WriteHeader(de.HTTPStatus())
	_ = json.NewEncoder(w).Encode(resp)
}

// requestIDOf prefers the context ID and falls back to the response
// header, which RequestID sets before a panic can unwind past it.
func requestIDOf(w http.ResponseWriter, r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return w.Header().Get(RequestIDHeader)
}

// clientIP returns the peer address of the connection. Forwarding
// headers are ignored because the allow list and rate limit key on it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
