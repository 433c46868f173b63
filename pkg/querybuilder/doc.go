// Package querybuilder compiles structured query requests into SQL text.
//
// The package has two entry points: Validate, which checks a Request for
// completeness and returns every violation as a human-readable message, and
// BuildQuery, which deterministically renders the request into a SELECT
// statement. The two are intentionally decoupled: BuildQuery never fails and
// silently drops incomplete filters, so it stays usable on its own, while
// Validate is the authority on whether the request is actually complete.
//
// BuildQuery performs no identifier quoting and no escaping of embedded
// quote characters in values. Callers must not feed it untrusted input
// without an upstream allow-list (see pkg/catalog) or parameterization.
package querybuilder
