// Package connection provides the HTTP client statmesh-cli uses to reach
// a statmesh-server admin endpoint.
//
// Servers without a scheme are dialed over http://. For https:// servers
// the client trusts the system roots plus an optional CA file, or skips
// verification entirely when asked to.
package connection
