// Package auth implements API key authentication for the HTTP API.
//
// Keys are configured statically, validated by an in-memory store and
// attached to the request context by the middleware so handlers can
// attribute actions to a user.
package auth
