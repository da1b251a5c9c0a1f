package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/statmesh/internal/infra/tlsroots"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	tls        *tlsroots.Reloader
}

// Option configures a Server.
type Option func(*Server)

// WithTLS serves HTTPS using the reloader's current certificate.
func WithTLS(r *tlsroots.Reloader) Option {
	return func(s *Server) {
		s.tls = r
	}
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tls != nil {
		s.httpServer.TLSConfig = s.tls.ServerConfig()
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// TLSEnabled reports whether the server serves HTTPS.
func (s *Server) TLSEnabled() bool {
	return s.tls != nil
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after a graceful
// shutdown.
func (s *Server) Serve(ln net.Listener) error {
	var err error
	if s.tls != nil {
		err = s.httpServer.ServeTLS(ln, "", "")
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
