// Dataquery is the backend for a database administration dashboard.
//
// It serves a REST API for:
//   - Catalog-driven schema browsing (allowed databases, tables, columns)
//   - Visual query building, validation and execution with history
//   - Table browsing with search, sorting and CSV/JSON export
//   - Stratified splitting of result sets into balanced groups
//   - Theory (campaign) cohort management and daily user distribution
//
// Usage:
//
//	# Start the server with default configuration
//	dataquery run
//
//	# Start with a custom configuration file
//	dataquery run --config /path/to/config.yaml
//
//	# Validate configuration and catalog without starting
//	dataquery validate
//
//	# Run a one-shot query from the command line
//	dataquery query --database operational --table users --limit 10
//
//	# Run the daily distribution once
//	dataquery distribute
//
//	# Show version information
//	dataquery version
package main

func main() {
	Execute()
}
