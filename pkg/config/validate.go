package config

import (
	"fmt"
	"strings"

	"dataquery-hq/dataquery/pkg/security/auth"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects all field errors found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError; nil means valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateCatalog(&cfg.Catalog)...)
	errs = append(errs, validateDatasource(&cfg.Datasource)...)
	errs = append(errs, validateAppStore(&cfg.AppStore)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateDistribution(&cfg.Distribution)...)
	errs = append(errs, validateNotify(&cfg.Notify)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	return errs
}

func validateCatalog(cfg *CatalogConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "catalog.path",
			Message: "catalog path is required",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "catalog.debounce_interval",
			Message: "debounce interval must be positive",
		})
	}

	return errs
}

// validSQLiteDrivers are the registered database/sql driver names.
var validSQLiteDrivers = map[string]bool{
	"sqlite3": true, // mattn/go-sqlite3, cgo
	"sqlite":  true, // modernc.org/sqlite, pure Go
}

func validateDatasource(cfg *DatasourceConfig) []FieldError {
	var errs []FieldError

	if !validSQLiteDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "datasource.driver",
			Message: fmt.Sprintf("unknown driver %q (supported: sqlite3, sqlite)", cfg.Driver),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "datasource.path",
			Message: "database path is required",
		})
	}
	if cfg.MaxOpenConns < 1 {
		errs = append(errs, FieldError{
			Field:   "datasource.max_open_conns",
			Message: "max open connections must be at least 1",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "datasource.max_idle_conns",
			Message: "max idle connections must be non-negative",
		})
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		errs = append(errs, FieldError{
			Field:   "datasource.max_idle_conns",
			Message: "max idle connections cannot exceed max open connections",
		})
	}
	if cfg.QueryTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "datasource.query_timeout",
			Message: "query timeout must be positive",
		})
	}
	if cfg.DefaultLimit < 1 {
		errs = append(errs, FieldError{
			Field:   "datasource.default_limit",
			Message: "default limit must be at least 1",
		})
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		errs = append(errs, FieldError{
			Field:   "datasource.max_limit",
			Message: "max limit cannot be smaller than default limit",
		})
	}

	return errs
}

func validateAppStore(cfg *AppStoreConfig) []FieldError {
	var errs []FieldError

	if !validSQLiteDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "app_store.driver",
			Message: fmt.Sprintf("unknown driver %q (supported: sqlite3, sqlite)", cfg.Driver),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "app_store.path",
			Message: "database path is required",
		})
	}
	if cfg.MaxOpenConns < 1 {
		errs = append(errs, FieldError{
			Field:   "app_store.max_open_conns",
			Message: "max open connections must be at least 1",
		})
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.RetentionDays > 0 && cfg.RetentionSchedule == "" {
		errs = append(errs, FieldError{
			Field:   "history.retention_schedule",
			Message: "retention schedule is required when retention is enabled",
		})
	}
	if cfg.DefaultPageSize < 1 {
		errs = append(errs, FieldError{
			Field:   "history.default_page_size",
			Message: "default page size must be at least 1",
		})
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		errs = append(errs, FieldError{
			Field:   "history.max_page_size",
			Message: "max page size cannot be smaller than default page size",
		})
	}

	return errs
}

func validateDistribution(cfg *DistributionConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Schedule == "" {
		errs = append(errs, FieldError{
			Field:   "distribution.schedule",
			Message: "schedule is required when distribution is enabled",
		})
	}
	if cfg.Enabled && cfg.UsersQuery == "" {
		errs = append(errs, FieldError{
			Field:   "distribution.users_query",
			Message: "users query is required when distribution is enabled",
		})
	}
	return errs
}

func validateNotify(cfg *NotifyConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return nil
	}

	if cfg.Host == "" {
		errs = append(errs, FieldError{
			Field:   "notify.host",
			Message: "SMTP host is required when notifications are enabled",
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "notify.port",
			Message: "SMTP port must be between 1 and 65535",
		})
	}
	if cfg.From == "" {
		errs = append(errs, FieldError{
			Field:   "notify.from",
			Message: "sender address is required when notifications are enabled",
		})
	}

	return errs
}

// validLogLevels and validLogFormats enumerate supported logging options.
var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "text": true}
)

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown log level %q (supported: debug, info, warn, error)", cfg.Logging.Level),
		})
	}
	if !validLogFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown log format %q (supported: json, text)", cfg.Logging.Format),
		})
	}
	if cfg.Metrics.IsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError

	if cfg.Auth.Enabled && len(cfg.Auth.Keys) == 0 {
		errs = append(errs, FieldError{
			Field:   "security.auth.keys",
			Message: "at least one API key is required when auth is enabled",
		})
	}
	for i, key := range cfg.Auth.Keys {
		if key.Key == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("security.auth.keys[%d].key", i),
				Message: "key value is required",
			})
		}
		if key.UserID == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("security.auth.keys[%d].user_id", i),
				Message: "user id is required",
			})
		}
		if key.Role != "" && !auth.ValidRole(key.Role) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("security.auth.keys[%d].role", i),
				Message: fmt.Sprintf("unknown role %q", key.Role),
			})
		}
	}

	return errs
}
