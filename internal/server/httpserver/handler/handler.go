package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/core/service"
	"github.com/yndnr/statmesh/internal/telemetry/logger"
)

const (
	contentTypeText       = "text/plain; charset=utf-8"
	contentTypeJSON       = "application/json"
	contentTypePrometheus = "text/plain; version=0.0.4; charset=utf-8"

	// ErrorCodeHeader carries the domain error code of a failed request.
	ErrorCodeHeader = "X-Error-Code"

	okBody = "OK\n"
)

// Options configures a Handler.
type Options struct {
	Stats   *service.StatsService
	Lookups *service.LookupService
	Logger  *slog.Logger

	// Version is reported by the health endpoints.
	Version string

	// Ready reports whether the server accepts traffic. Nil means always.
	Ready func() bool
}

// Handler routes admin API requests to the stats services.
type Handler struct {
	stats   *service.StatsService
	lookups *service.LookupService
	logger  *slog.Logger
	version string
	ready   func() bool
	mux     *http.ServeMux
}

// New creates a Handler with its routes registered.
func New(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	h := &Handler{
		stats:   opts.Stats,
		lookups: opts.Lookups,
		logger:  opts.Logger,
		version: opts.Version,
		ready:   opts.Ready,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /stats", h.handleStats)
	h.mux.HandleFunc("GET /stats/prometheus", h.handlePrometheusStats)

	h.mux.HandleFunc("GET /stats/recentlookups", h.handleRecentLookups)
	h.mux.HandleFunc("POST /stats/recentlookups/clear", h.handleRecentLookupsClear)
	h.mux.HandleFunc("POST /stats/recentlookups/disable", h.handleRecentLookupsDisable)
	h.mux.HandleFunc("POST /stats/recentlookups/enable", h.handleRecentLookupsEnable)

	h.mux.HandleFunc("POST /reset_counters", h.handleResetCounters)
}

// writeText writes a plain text body.
func (h *Handler) writeText(w http.ResponseWriter, status int, body string) {
	h.writeBody(w, status, contentTypeText, []byte(body))
}

func (h *Handler) writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("failed to write response", "error", err)
	}
}

// writeJSON writes a JSON response with the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes de as the JSON envelope with its mapped status.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, de *domain.DomainError) {
	response := NewErrorResponse(logger.RequestIDFromContext(r.Context()), de)

	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set(ErrorCodeHeader, de.Code)
	w.WriteHeader(de.HTTPStatus())
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if de, ok := domain.AsDomainError(err); ok {
		h.writeError(w, r, de)
		return
	}

	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, domain.ErrInternalServer)
}
