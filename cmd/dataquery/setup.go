package main

import (
	"fmt"

	"dataquery-hq/dataquery/pkg/config"
	"dataquery-hq/dataquery/pkg/datasource"
	"dataquery-hq/dataquery/pkg/history"
	"dataquery-hq/dataquery/pkg/telemetry/logging"
	"dataquery-hq/dataquery/pkg/theory"
)

// loadConfig loads the configuration file with environment overrides
// applied and installs the default logger.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", cfgFile, err)
	}
	cfg := config.MustGetConfig()

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if _, err := logging.Initialize(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openDatasource opens the operational database from config.
func openDatasource(cfg *config.Config) (*datasource.Datasource, error) {
	return datasource.Open(&datasource.Config{
		Driver:       cfg.Datasource.Driver,
		Path:         cfg.Datasource.Path,
		MaxOpenConns: cfg.Datasource.MaxOpenConns,
		MaxIdleConns: cfg.Datasource.MaxIdleConns,
		WALMode:      cfg.Datasource.WALEnabled(),
		BusyTimeout:  cfg.Datasource.BusyTimeout,
		QueryTimeout: cfg.Datasource.QueryTimeout,
	})
}

// openHistory opens the history side of the app-state database.
func openHistory(cfg *config.Config) (*history.Store, error) {
	return history.Open(&history.Config{
		Driver:       cfg.AppStore.Driver,
		Path:         cfg.AppStore.Path,
		MaxOpenConns: cfg.AppStore.MaxOpenConns,
		MaxIdleConns: cfg.AppStore.MaxIdleConns,
		BusyTimeout:  cfg.AppStore.BusyTimeout,
	})
}

// openTheories opens the theory side of the app-state database.
func openTheories(cfg *config.Config) (*theory.Store, error) {
	return theory.Open(&theory.Config{
		Driver:       cfg.AppStore.Driver,
		Path:         cfg.AppStore.Path,
		MaxOpenConns: cfg.AppStore.MaxOpenConns,
		MaxIdleConns: cfg.AppStore.MaxIdleConns,
		BusyTimeout:  cfg.AppStore.BusyTimeout,
	})
}
