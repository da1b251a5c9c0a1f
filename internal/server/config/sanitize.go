package config

import "path/filepath"

// Sanitize returns a copy of the config safe for logging.
// The TLS key path is reduced to its base name.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Admin.AllowList = append([]string(nil), cfg.Admin.AllowList...)

	if sanitized.Server.HTTP.TLSKeyFile != "" {
		sanitized.Server.HTTP.TLSKeyFile = maskPath(sanitized.Server.HTTP.TLSKeyFile)
	}

	return &sanitized
}

func maskPath(path string) string {
	return "****/" + filepath.Base(path)
}
