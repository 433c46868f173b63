// Package datasource executes compiled SQL against the operational
// database and returns generic result sets.
//
// Two SQLite drivers are supported and selected by configuration:
// "sqlite3" (mattn, cgo) and "sqlite" (modernc, pure Go). The datasource
// never builds SQL itself; it runs whatever the query compiler produced,
// which is why callers must gate every request through the catalog
// allow-list first.
package datasource
