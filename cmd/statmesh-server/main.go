package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/core/service"
	"github.com/yndnr/statmesh/internal/infra/buildinfo"
	"github.com/yndnr/statmesh/internal/infra/confloader"
	"github.com/yndnr/statmesh/internal/infra/shutdown"
	"github.com/yndnr/statmesh/internal/infra/tlsroots"
	"github.com/yndnr/statmesh/internal/server/config"
	"github.com/yndnr/statmesh/internal/server/httpserver"
	"github.com/yndnr/statmesh/internal/server/localserver"
	"github.com/yndnr/statmesh/internal/storage/memory"
	"github.com/yndnr/statmesh/internal/telemetry/logger"
	"github.com/yndnr/statmesh/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

// Stat names the server records about itself.
const (
	statVersion          = "server.version"
	statConfigReloads    = "server.config_reloads"
	statConfigReloadErrs = "server.config_reload_failures"
	statCertReloads      = "tls.cert_reloads"
	statCertReloadErrs   = "tls.cert_reload_failures"
	statCertExpiry       = "tls.cert_expiry_timestamp_seconds"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// overrides collects repeated --set key=value flags.
type overrides map[string]any

func (o overrides) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

func (o overrides) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("want key=value, got %q", s)
	}
	o[key] = value
	return nil
}

func run(args []string) error {
	fs := flag.NewFlagSet("statmesh-server", flag.ContinueOnError)
	configFile := fs.String("config", "", "Path to configuration file")
	showVersion := fs.Bool("version", false, "Show version information")
	sets := overrides{}
	fs.Var(sets, "set", "Override a setting, e.g. --set stats.flush_interval=1s (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("statmesh-server %s\n", buildinfo.String())
		return nil
	}

	loader, cfg, err := loadConfig(*configFile, sets)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting statmesh-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", fmt.Sprintf("%+v", *config.Sanitize(cfg)))

	srv, err := newServer(cfg, slog.Default())
	if err != nil {
		return err
	}

	sh := shutdown.NewHandler(shutdownTimeout, slog.Default())
	srv.registerShutdown(sh)

	if loader.FilePath() != "" {
		watcher, err := watchConfig(loader, srv.store, slog.Default())
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			sh.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	srv.start(func(err error) { cancel(err) })

	log.Info("server started", "addr", cfg.Server.HTTP.Addr, "tls", srv.http.TLSEnabled())
	if err := sh.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, the optional file, the environment and the
// --set overrides, in that order.
func loadConfig(configFile string, sets overrides) (*confloader.Loader, *config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if len(sets) > 0 {
		opts = append(opts, confloader.WithOverrides(sets))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

// initLogger installs the configured logger as the process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "statmesh-server",
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// server holds the running components.
type server struct {
	log       *slog.Logger
	store     *memory.Store
	flusher   *memory.Flusher
	collector *metric.Collector
	tls       *tlsroots.Reloader
	http      *httpserver.Server
	local     *localserver.Server
	ready     atomic.Bool
}

// newServer builds every component from cfg without starting anything.
func newServer(cfg *config.ServerConfig, log *slog.Logger) (*server, error) {
	s := &server{log: log}

	s.store = memory.New()
	s.store.TextReadout(statVersion).Set(buildinfo.Version)

	stats := service.NewStatsService(s.store, s.store.Lookups(),
		metric.NewPrometheusSink(cfg.Stats.PrometheusNamespace))
	lookups := service.NewLookupService(s.store.Lookups(), cfg.Stats.RecentLookupsCapacity)

	s.flusher = memory.NewFlusher(s.store, cfg.Stats.FlushInterval, log)
	s.collector = metric.NewCollector(s.store, cfg.Stats.RuntimeInterval, log)

	routerCfg := httpserver.RouterConfig{
		Stats:          stats,
		Lookups:        lookups,
		Store:          s.store,
		Logger:         log,
		Version:        buildinfo.Version,
		Ready:          s.ready.Load,
		AdminAllowList: cfg.Admin.AllowList,
		RateLimit:      cfg.Admin.RateLimit,
		EnableAudit:    cfg.Admin.EnableAudit,
	}
	router, err := httpserver.NewRouter(&routerCfg)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	if path := cfg.Server.Local.SocketPath; path != "" {
		// Socket permissions guard local access; no IP to filter or limit.
		localCfg := routerCfg
		localCfg.AdminAllowList = nil
		localCfg.RateLimit = 0
		localRouter, err := httpserver.NewRouter(&localCfg)
		if err != nil {
			return nil, fmt.Errorf("build local router: %w", err)
		}
		s.local = localserver.New(path, localRouter, log)
	}

	var opts []httpserver.Option
	if cfg.Server.HTTP.TLSEnabled() {
		s.tls, err = tlsroots.NewReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("load TLS certificate: %w", err)
		}
		reloads := s.store.Counter(statCertReloads)
		failures := s.store.Counter(statCertReloadErrs)
		expiry := s.store.Gauge(statCertExpiry, domain.ImportModeNeverImport)
		expiry.Set(uint64(s.tls.NotAfter().Unix()))
		s.tls.OnReload = func(err error) {
			if err != nil {
				failures.Inc()
				return
			}
			reloads.Inc()
			expiry.Set(uint64(s.tls.NotAfter().Unix()))
		}
		opts = append(opts, httpserver.WithTLS(s.tls))
	}
	s.http = httpserver.New(cfg.Server.HTTP.Addr, router, opts...)

	return s, nil
}

// start launches the background loops and the listener. fail is called
// if the listener stops with an error.
func (s *server) start(fail func(error)) {
	s.flusher.Start()
	s.collector.Start()
	if s.tls != nil {
		s.tls.StartAsync()
	}

	go func() {
		s.log.Info("HTTP server listening", "addr", s.http.Addr())
		if err := s.http.ListenAndServe(); err != nil {
			s.log.Error("HTTP server error", "error", err)
			fail(fmt.Errorf("http server: %w", err))
		}
	}()
	if s.local != nil {
		go func() {
			s.log.Info("local server listening", "socket", s.local.Path())
			if err := s.local.ListenAndServe(); err != nil {
				s.log.Error("local server error", "error", err)
				fail(fmt.Errorf("local server: %w", err))
			}
		}()
	}
	s.ready.Store(true)
}

// registerShutdown adds hooks in startup order; they run in reverse.
func (s *server) registerShutdown(sh *shutdown.Handler) {
	sh.OnShutdown("flusher", func(context.Context) error {
		s.flusher.Stop()
		return nil
	})
	sh.OnShutdown("runtime-collector", func(context.Context) error {
		s.collector.Stop()
		return nil
	})
	if s.tls != nil {
		sh.OnShutdown("tls-reloader", func(context.Context) error {
			s.tls.Stop()
			return nil
		})
	}
	sh.OnShutdown("http", func(ctx context.Context) error {
		s.ready.Store(false)
		return s.http.Shutdown(ctx)
	})
	if s.local != nil {
		sh.OnShutdown("local", func(ctx context.Context) error {
			return s.local.Shutdown(ctx)
		})
	}
}

// watchConfig re-reads the config file on change and applies log.level.
// Other settings need a restart.
func watchConfig(loader *confloader.Loader, store *memory.Store, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(loader.FilePath()); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	reloads := store.Counter(statConfigReloads)
	failures := store.Counter(statConfigReloadErrs)
	watcher.OnChange(func(path string) {
		cfg := config.Default()
		if err := loader.Reload(cfg); err != nil {
			failures.Inc()
			log.Error("config reload failed", "path", path, "error", err)
			return
		}
		if err := config.Verify(cfg); err != nil {
			failures.Inc()
			log.Error("reloaded config is invalid", "path", path, "error", err)
			return
		}
		reloads.Inc()
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
