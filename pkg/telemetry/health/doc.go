// Package health implements liveness and readiness probes with
// pluggable per-component checks.
package health
