package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values and validates the result. Environment
// variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention DATAQUERY_SECTION_FIELD (e.g. DATAQUERY_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies DATAQUERY_SECTION_FIELD environment variable
// overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	setString(&cfg.Server.ListenAddress, "DATAQUERY_SERVER_LISTEN_ADDRESS")
	setDuration(&cfg.Server.ReadTimeout, "DATAQUERY_SERVER_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "DATAQUERY_SERVER_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "DATAQUERY_SERVER_IDLE_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "DATAQUERY_SERVER_SHUTDOWN_TIMEOUT")
	setDuration(&cfg.Server.RequestTimeout, "DATAQUERY_SERVER_REQUEST_TIMEOUT")
	setInt(&cfg.Server.MaxHeaderBytes, "DATAQUERY_SERVER_MAX_HEADER_BYTES")

	// Catalog overrides
	setString(&cfg.Catalog.Path, "DATAQUERY_CATALOG_PATH")
	setBool(&cfg.Catalog.Watch, "DATAQUERY_CATALOG_WATCH")

	// Datasource overrides
	setString(&cfg.Datasource.Driver, "DATAQUERY_DATASOURCE_DRIVER")
	setString(&cfg.Datasource.Path, "DATAQUERY_DATASOURCE_PATH")
	setInt(&cfg.Datasource.MaxOpenConns, "DATAQUERY_DATASOURCE_MAX_OPEN_CONNS")
	setInt(&cfg.Datasource.MaxIdleConns, "DATAQUERY_DATASOURCE_MAX_IDLE_CONNS")
	setBoolPtr(&cfg.Datasource.WALMode, "DATAQUERY_DATASOURCE_WAL_MODE")
	setDuration(&cfg.Datasource.QueryTimeout, "DATAQUERY_DATASOURCE_QUERY_TIMEOUT")
	setInt(&cfg.Datasource.DefaultLimit, "DATAQUERY_DATASOURCE_DEFAULT_LIMIT")
	setInt(&cfg.Datasource.MaxLimit, "DATAQUERY_DATASOURCE_MAX_LIMIT")

	// App store overrides
	setString(&cfg.AppStore.Driver, "DATAQUERY_APP_STORE_DRIVER")
	setString(&cfg.AppStore.Path, "DATAQUERY_APP_STORE_PATH")

	// History overrides
	setBoolPtr(&cfg.History.Enabled, "DATAQUERY_HISTORY_ENABLED")
	setInt(&cfg.History.RetentionDays, "DATAQUERY_HISTORY_RETENTION_DAYS")
	setString(&cfg.History.RetentionSchedule, "DATAQUERY_HISTORY_RETENTION_SCHEDULE")

	// Distribution overrides
	setBool(&cfg.Distribution.Enabled, "DATAQUERY_DISTRIBUTION_ENABLED")
	setString(&cfg.Distribution.Schedule, "DATAQUERY_DISTRIBUTION_SCHEDULE")
	setString(&cfg.Distribution.UsersQuery, "DATAQUERY_DISTRIBUTION_USERS_QUERY")

	// Notify overrides
	setBool(&cfg.Notify.Enabled, "DATAQUERY_NOTIFY_ENABLED")
	setString(&cfg.Notify.Host, "DATAQUERY_NOTIFY_HOST")
	setInt(&cfg.Notify.Port, "DATAQUERY_NOTIFY_PORT")
	setString(&cfg.Notify.Username, "DATAQUERY_NOTIFY_USERNAME")
	setString(&cfg.Notify.Password, "DATAQUERY_NOTIFY_PASSWORD")
	setString(&cfg.Notify.From, "DATAQUERY_NOTIFY_FROM")
	if val := os.Getenv("DATAQUERY_NOTIFY_RECIPIENTS"); val != "" {
		var recipients []string
		for _, r := range strings.Split(val, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
		cfg.Notify.Recipients = recipients
	}

	// Telemetry overrides
	setString(&cfg.Telemetry.Logging.Level, "DATAQUERY_TELEMETRY_LOGGING_LEVEL")
	setString(&cfg.Telemetry.Logging.Format, "DATAQUERY_TELEMETRY_LOGGING_FORMAT")
	setBoolPtr(&cfg.Telemetry.Metrics.Enabled, "DATAQUERY_TELEMETRY_METRICS_ENABLED")
	setString(&cfg.Telemetry.Metrics.Path, "DATAQUERY_TELEMETRY_METRICS_PATH")

	// Security overrides
	setBool(&cfg.Security.Auth.Enabled, "DATAQUERY_SECURITY_AUTH_ENABLED")
}

func setString(dst *string, name string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

func setInt(dst *int, name string) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setBool(dst *bool, name string) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setBoolPtr(dst **bool, name string) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = &b
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
