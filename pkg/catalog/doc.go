// Package catalog holds the allow-list of databases, tables and columns
// that the query API may touch.
//
// The catalog is loaded from a YAML file and kept in memory behind a
// read-write lock; a file watcher can hot-reload it without restarting the
// server. Every table or column a request names must pass the catalog
// check before any SQL reaches the datasource.
package catalog
