// Package middleware provides the HTTP middleware chain: panic
// recovery, request logging, request IDs, CORS and per-request timeouts.
package middleware
