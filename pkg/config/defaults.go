package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSMaxAge = 3600 // 1 hour

	// Catalog defaults
	DefaultCatalogPath     = "./catalog.yaml"
	DefaultCatalogDebounce = 100 * time.Millisecond

	// Datasource defaults
	DefaultDatasourceDriver       = "sqlite3"
	DefaultDatasourcePath         = "data/operational.db"
	DefaultDatasourceMaxOpenConns = 10
	DefaultDatasourceMaxIdleConns = 5
	DefaultDatasourceBusyTimeout  = 5 * time.Second
	DefaultQueryTimeout           = 30 * time.Second
	DefaultQueryLimit             = 100
	DefaultQueryMaxLimit          = 10000

	// App store defaults
	DefaultAppStorePath = "data/appstate.db"

	// History defaults
	DefaultHistoryRetentionDays     = 90
	DefaultHistoryRetentionSchedule = "0 3 * * *"
	DefaultHistoryPageSize          = 50
	DefaultHistoryMaxPageSize       = 500

	// Distribution defaults
	DefaultDistributionSchedule = "0 9 * * *"
	DefaultDistributionSeed     = int64(42)

	// Notify defaults
	DefaultSMTPPort = 587

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values and is
// idempotent, so calling it multiple times is safe.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	if cfg.Server.CORS.Enabled == nil {
		enabled := true
		cfg.Server.CORS.Enabled = &enabled
	}
	if cfg.Server.CORS.AllowedOrigins == nil {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.CORS.AllowedMethods == nil {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if cfg.Server.CORS.AllowedHeaders == nil {
		cfg.Server.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID", "X-API-Key"}
	}
	if cfg.Server.CORS.ExposedHeaders == nil {
		cfg.Server.CORS.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Catalog defaults
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.DebounceInterval == 0 {
		cfg.Catalog.DebounceInterval = DefaultCatalogDebounce
	}

	// Datasource defaults
	if cfg.Datasource.Driver == "" {
		cfg.Datasource.Driver = DefaultDatasourceDriver
	}
	if cfg.Datasource.Path == "" {
		cfg.Datasource.Path = DefaultDatasourcePath
	}
	if cfg.Datasource.MaxOpenConns == 0 {
		cfg.Datasource.MaxOpenConns = DefaultDatasourceMaxOpenConns
	}
	if cfg.Datasource.MaxIdleConns == 0 {
		cfg.Datasource.MaxIdleConns = DefaultDatasourceMaxIdleConns
	}
	if cfg.Datasource.WALMode == nil {
		enabled := true
		cfg.Datasource.WALMode = &enabled
	}
	if cfg.Datasource.BusyTimeout == 0 {
		cfg.Datasource.BusyTimeout = DefaultDatasourceBusyTimeout
	}
	if cfg.Datasource.QueryTimeout == 0 {
		cfg.Datasource.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.Datasource.DefaultLimit == 0 {
		cfg.Datasource.DefaultLimit = DefaultQueryLimit
	}
	if cfg.Datasource.MaxLimit == 0 {
		cfg.Datasource.MaxLimit = DefaultQueryMaxLimit
	}

	// App store defaults
	if cfg.AppStore.Driver == "" {
		cfg.AppStore.Driver = DefaultDatasourceDriver
	}
	if cfg.AppStore.Path == "" {
		cfg.AppStore.Path = DefaultAppStorePath
	}
	if cfg.AppStore.MaxOpenConns == 0 {
		cfg.AppStore.MaxOpenConns = DefaultDatasourceMaxOpenConns
	}
	if cfg.AppStore.MaxIdleConns == 0 {
		cfg.AppStore.MaxIdleConns = DefaultDatasourceMaxIdleConns
	}
	if cfg.AppStore.BusyTimeout == 0 {
		cfg.AppStore.BusyTimeout = DefaultDatasourceBusyTimeout
	}

	// History defaults
	if cfg.History.Enabled == nil {
		enabled := true
		cfg.History.Enabled = &enabled
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.History.RetentionSchedule == "" {
		cfg.History.RetentionSchedule = DefaultHistoryRetentionSchedule
	}
	if cfg.History.DefaultPageSize == 0 {
		cfg.History.DefaultPageSize = DefaultHistoryPageSize
	}
	if cfg.History.MaxPageSize == 0 {
		cfg.History.MaxPageSize = DefaultHistoryMaxPageSize
	}

	// Distribution defaults
	if cfg.Distribution.Schedule == "" {
		cfg.Distribution.Schedule = DefaultDistributionSchedule
	}
	if cfg.Distribution.Seed == 0 {
		cfg.Distribution.Seed = DefaultDistributionSeed
	}

	// Notify defaults
	if cfg.Notify.Port == 0 {
		cfg.Notify.Port = DefaultSMTPPort
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		enabled := true
		cfg.Telemetry.Metrics.Enabled = &enabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	// API key defaults
	for i := range cfg.Security.Auth.Keys {
		if cfg.Security.Auth.Keys[i].Enabled == nil {
			enabled := true
			cfg.Security.Auth.Keys[i].Enabled = &enabled
		}
	}
}
