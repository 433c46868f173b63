// Package logging provides the slog-based structured logger used across
// the service, with context helpers that carry request-scoped fields.
package logging
