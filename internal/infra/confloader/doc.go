// Package confloader loads configuration with koanf and watches the
// configuration file with fsnotify.
//
// Priority (highest to lowest):
//
//  1. Explicit overrides (LoadMap, used for command-line flags)
//  2. Environment variables (STATMESH_ prefix)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct (defaults)
//
// Environment variables separate sections with a double underscore so
// that keys may contain single underscores:
//
//	STATMESH_STATS__FLUSH_INTERVAL=10s  ->  stats.flush_interval
package confloader
