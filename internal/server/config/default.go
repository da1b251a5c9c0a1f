package config

import (
	"math"
	"time"
)

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:9901"

	DefaultRateLimit = 100

	DefaultFlushInterval         = 5 * time.Second
	DefaultRecentLookupsCapacity = 100
	MaxRecentLookupsCapacity     = math.MaxInt32
	DefaultRuntimeInterval       = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
		},
		Admin: AdminSection{
			RateLimit:   DefaultRateLimit,
			EnableAudit: true,
		},
		Stats: StatsSection{
			FlushInterval:         DefaultFlushInterval,
			RecentLookupsCapacity: DefaultRecentLookupsCapacity,
			RuntimeInterval:       DefaultRuntimeInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
