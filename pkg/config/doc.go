// Package config defines the application configuration model and its
// loading pipeline.
//
// Configuration is read from a YAML file, filled in with defaults,
// overridden by DATAQUERY_* environment variables, and validated before
// use. A thread-safe singleton holds the active configuration; Reload
// swaps it atomically so a failed reload never disturbs the running
// config.
package config
