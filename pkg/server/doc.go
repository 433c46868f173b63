// Package server provides the HTTP API server for the query service.
//
// This package ties together the stores, handlers and middleware and
// provides server lifecycle management including start, shutdown, and
// health probes.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "dataquery-hq/dataquery/pkg/config"
//	    "dataquery-hq/dataquery/pkg/server"
//	    "dataquery-hq/dataquery/pkg/server/handlers"
//	)
//
//	cfg, err := config.LoadConfig("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h := &handlers.Handlers{
//	    Catalog:    catalogStore,
//	    Datasource: ds,
//	    History:    historyStore,
//	    Config:     cfg,
//	}
//
//	srv := server.NewServer(cfg, h)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server shuts down gracefully on SIGTERM or SIGINT, or when
// Shutdown is called. In-flight requests are given
// server.shutdown_timeout to complete.
//
// # Routes
//
// API routes (API-key protected when security.auth.enabled):
//
//   - GET    /databases                                - allowed databases
//   - GET    /databases/{id}/tables                    - allowed tables
//   - GET    /databases/{id}/tables/{table}/columns    - allowed columns
//   - POST   /databases/test-connection                - connectivity probe
//   - POST   /query/execute                            - compile and run a query
//   - POST   /query/count                              - compile and run a count
//   - GET    /query/history                            - execution history
//   - POST   /query/save                               - save a query definition
//   - GET    /query/saved                              - list saved queries
//   - DELETE /query/saved/{id}                         - delete a saved query
//   - GET    /data                                     - browse a table
//   - GET    /data/export                              - export a table (CSV/JSON)
//   - GET    /data/stats/{table}                       - table row count
//   - GET    /settings                                 - dashboard preferences
//   - PUT    /settings                                 - update preferences (admin role)
//   - GET    /stats                                    - dashboard aggregates
//   - POST   /stratify                                 - stratified group split
//   - POST   /theories                                 - create a theory
//   - GET    /theories                                 - list active theories
//   - POST   /distribution/run                         - trigger a distribution run
//   - GET    /distribution/status                      - scheduler status
//
// Always unauthenticated:
//
//   - GET /health  - liveness probe
//   - GET /ready   - readiness probe (checks datasource and app store)
//   - GET /version - build information
//   - GET /metrics - Prometheus metrics (when enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Timeout: Enforces per-request timeout
//  2. CORS: Adds Cross-Origin Resource Sharing headers
//  3. RequestID: Generates unique request ID for tracing
//  4. Logging: Logs request/response details
//  5. Recovery: Recovers from panics and returns 500 error
package server
