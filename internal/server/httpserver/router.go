package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/statmesh/internal/core/service"
	"github.com/yndnr/statmesh/internal/server/httpserver/handler"
	"github.com/yndnr/statmesh/internal/storage/memory"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Stats   *service.StatsService
	Lookups *service.LookupService

	// Store receives request metrics. Nil disables instrumentation.
	Store *memory.Store

	Logger *slog.Logger

	// Version is reported by the health endpoints.
	Version string

	// Ready reports readiness for GET /ready. Nil means always ready.
	Ready func() bool

	// AdminAllowList is the IP/CIDR allow list (empty = no restriction).
	AdminAllowList []string

	// RateLimit is the per-IP request rate (requests/second, 0 = off).
	RateLimit float64

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// NewRouter builds the admin API handler.
//
// Stats and lookup endpoints run through
// Recover -> RequestID -> RateLimit -> NetworkACL -> Audit -> Instrument.
// Health endpoints only get Recover and RequestID so probes keep working
// from outside the allow list.
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(handler.Options{
		Stats:   cfg.Stats,
		Lookups: cfg.Lookups,
		Logger:  log,
		Version: cfg.Version,
		Ready:   cfg.Ready,
	})

	acl, err := NetworkACL(cfg.AdminAllowList, log)
	if err != nil {
		return nil, err
	}

	middlewares := []Middleware{
		Recover(log),
		RequestID(),
		RateLimit(cfg.RateLimit),
		acl,
	}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit(log))
	}
	if cfg.Store != nil {
		middlewares = append(middlewares, Instrument(cfg.Store))
	}

	mux := http.NewServeMux()

	probe := Chain(h, Recover(log), RequestID())
	mux.Handle("GET /health", probe)
	mux.Handle("GET /ready", probe)

	mux.Handle("/", Chain(h, middlewares...))

	return mux, nil
}
