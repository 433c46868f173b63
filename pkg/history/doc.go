// Package history records executed queries and manages saved queries on
// the service's own state database.
//
// History records power the dashboard's recent-queries view and stats;
// saved queries let analysts keep reusable request definitions. A cron
// driven pruner deletes history older than the configured retention.
package history
