// Package handlers implements the REST API: catalog browsing, query
// execution and history, data browse/export, stratification, theory
// management and distribution control.
package handlers
