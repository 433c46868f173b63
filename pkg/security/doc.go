/*
Package security provides authentication for the dataquery API.

# API Key Authentication

Validate API keys in HTTP middleware:

	validator := auth.NewAPIKeyValidator(apiKeys)
	middleware := auth.NewAPIKeyMiddleware(validator, sources)

	http.Handle("/", middleware.Handle(handler))

Keys are checked in constant time against the configured set, and the
authenticated key's user id is attached to the request context for the
handlers to record in query history.
*/
package security
