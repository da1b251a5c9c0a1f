// Package httpserver serves the statmesh admin API over HTTP or HTTPS.
//
// The router in router.go wires the handler package behind a middleware
// chain:
//
//   - Recover: converts panics into 500 responses
//   - RequestID: tags requests with a ULID and a context logger field
//   - RateLimit: per-client token buckets from golang.org/x/time/rate
//   - NetworkACL: IP/CIDR allow list
//   - Audit: logs completed requests
//   - Instrument: records request stats into the memory store
//
// Health probes bypass the rate limit and allow list.
package httpserver
