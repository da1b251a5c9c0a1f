package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/statmesh/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyAdmin(&cfg.Admin); err != nil {
		return err
	}
	if err := verifyStats(&cfg.Stats); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err)
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, path := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}

	if sock := cfg.Local.SocketPath; sock != "" {
		info, err := os.Stat(filepath.Dir(sock))
		if err != nil {
			return fmt.Errorf("server.local.socket_path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("server.local.socket_path: %s is not a directory", filepath.Dir(sock))
		}
	}
	return nil
}

func verifyAdmin(cfg *AdminSection) error {
	for _, entry := range cfg.AllowList {
		if _, err := ParseAllowEntry(entry); err != nil {
			return fmt.Errorf("admin.allow_list: %w", err)
		}
	}
	if cfg.RateLimit < 0 {
		return errors.New("admin.rate_limit must not be negative")
	}
	return nil
}

func verifyStats(cfg *StatsSection) error {
	if cfg.FlushInterval <= 0 {
		return errors.New("stats.flush_interval must be positive")
	}
	if cfg.RuntimeInterval <= 0 {
		return errors.New("stats.runtime_interval must be positive")
	}
	if cfg.RecentLookupsCapacity == 0 {
		return errors.New("stats.recent_lookups_capacity must be at least 1")
	}
	if cfg.RecentLookupsCapacity > MaxRecentLookupsCapacity {
		return fmt.Errorf("stats.recent_lookups_capacity must be at most %d", MaxRecentLookupsCapacity)
	}
	if ns := cfg.PrometheusNamespace; ns != "" && !validMetricPrefix(ns) {
		return fmt.Errorf("stats.prometheus_namespace %q: must match [a-zA-Z_][a-zA-Z0-9_]*", ns)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q: unknown level", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format %q: must be json or text", cfg.Format)
	}
}

// ParseAllowEntry parses an allow-list entry, either a bare IP or a CIDR.
func ParseAllowEntry(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func validMetricPrefix(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
