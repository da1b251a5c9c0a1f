// Package localserver serves the admin endpoints on a Unix domain socket.
//
// The socket gives operators on the same host access to every admin
// endpoint without going through the network allow list or the per-IP
// rate limiter. Access is controlled by file system permissions: the
// socket is created with mode 0600.
package localserver
