package config

import "time"

// ServerConfig is the root configuration for statmesh-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Admin  AdminSection  `koanf:"admin"`
	Stats  StatsSection  `koanf:"stats"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the Unix socket admin listener.
type LocalConfig struct {
	// SocketPath is where the socket is created. Empty disables it.
	SocketPath string `koanf:"socket_path"`
}

// HTTPConfig configures the HTTP server. TLS is enabled when both files
// are set.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// TLSEnabled reports whether the HTTP server serves TLS.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// AdminSection guards the admin endpoints.
type AdminSection struct {
	// AllowList holds IPs or CIDRs allowed to reach the server.
	// Empty allows every client.
	AllowList []string `koanf:"allow_list"`

	// RateLimit is the sustained requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// EnableAudit logs every mutating admin request.
	EnableAudit bool `koanf:"enable_audit"`
}

// StatsSection configures the stats store and its exporters.
type StatsSection struct {
	// FlushInterval is how often histogram interval windows close.
	FlushInterval time.Duration `koanf:"flush_interval"`

	// RecentLookupsCapacity is the capacity armed by recent-lookups enable.
	RecentLookupsCapacity uint64 `koanf:"recent_lookups_capacity"`

	// PrometheusNamespace prefixes every Prometheus metric name.
	PrometheusNamespace string `koanf:"prometheus_namespace"`

	// RuntimeInterval is how often Go runtime gauges are sampled.
	RuntimeInterval time.Duration `koanf:"runtime_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
