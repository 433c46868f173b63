// Package metrics exposes Prometheus metrics for queries, exports,
// theories and distribution runs.
package metrics
