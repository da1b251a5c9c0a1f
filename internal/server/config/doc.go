// Package config defines the statmesh-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation (addresses, intervals, allow list)
//   - sanitize.go: copies safe for logging
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and STATMESH_ environment variables.
package config
