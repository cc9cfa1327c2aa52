// Package clientip extracts the real client IP address from HTTP requests,
// honoring standard reverse-proxy headers before falling back to the
// connection's remote address.
package clientip
