// Package theory manages campaign cohorts: named groups of users (by
// IIN) observed over a date window.
//
// A theory is stored as one membership row per IIN sharing a theory id,
// so user counts and windows are derived with aggregate queries. The
// package also hosts the IIN helpers used to lift identifiers out of
// arbitrary query results.
package theory
