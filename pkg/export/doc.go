// Package export serializes query result sets to CSV and JSON for
// download endpoints.
//
// Both exporters honor the result set's column order. Streaming variants
// consume a row channel for large exports, flushing periodically.
package export
