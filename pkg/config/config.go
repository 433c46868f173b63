package config

import "time"

// Config is the root configuration structure for the query service.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Catalog points at the database/table/column allow-list file and
	// controls hot reloading.
	Catalog CatalogConfig `yaml:"catalog"`

	// Datasource configures the operational database that compiled
	// queries run against.
	Datasource DatasourceConfig `yaml:"datasource"`

	// AppStore configures the service's own state database (query
	// history, saved queries, theories).
	AppStore AppStoreConfig `yaml:"app_store"`

	// History controls query-history retention and paging.
	History HistoryConfig `yaml:"history"`

	// Distribution configures the daily theory-distribution job.
	Distribution DistributionConfig `yaml:"distribution"`

	// Notify configures email notifications for distribution runs.
	Notify NotifyConfig `yaml:"notify"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains API authentication configuration.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Default: 60s (exports can be slow)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request.
	// Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size. Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for the API.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted. A pointer so
	// an explicit false in YAML survives defaulting. Default: true
	Enabled *bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins. Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed HTTP methods.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID", "X-API-Key"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders lists headers exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache age in seconds. Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials are allowed.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// CatalogConfig locates the schema allow-list.
type CatalogConfig struct {
	// Path is the catalog YAML file. Default: "./catalog.yaml"
	Path string `yaml:"path"`

	// Watch enables hot reloading of the catalog on file change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a reload fires.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// DatasourceConfig configures the operational database connection.
type DatasourceConfig struct {
	// Driver selects the SQLite driver: "sqlite3" (cgo) or
	// "sqlite" (pure Go). Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the database file. Default: "data/operational.db"
	Path string `yaml:"path"`

	// MaxOpenConns caps open connections. Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns caps idle connections. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging. A pointer so an explicit
	// false in YAML survives defaulting. Default: true
	WALMode *bool `yaml:"wal_mode"`

	// BusyTimeout is the SQLite busy timeout. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// QueryTimeout bounds a single query execution. Default: 30s
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// DefaultLimit is applied when a request carries no limit.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit caps the limit a request may ask for. Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// AppStoreConfig configures the service state database.
type AppStoreConfig struct {
	// Driver selects the SQLite driver, same options as the datasource.
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the database file. Default: "data/appstate.db"
	Path string `yaml:"path"`

	// MaxOpenConns caps open connections. Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns caps idle connections. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the SQLite busy timeout. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// HistoryConfig controls query-history behavior.
type HistoryConfig struct {
	// Enabled controls whether executed queries are recorded. A pointer
	// so an explicit false in YAML survives defaulting. Default: true
	Enabled *bool `yaml:"enabled"`

	// RetentionDays is how long history records are kept. Zero disables
	// pruning. Default: 90
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 3 AM)
	RetentionSchedule string `yaml:"retention_schedule"`

	// DefaultPageSize is the history page size when none is requested.
	// Default: 50
	DefaultPageSize int `yaml:"default_page_size"`

	// MaxPageSize caps the history page size. Default: 500
	MaxPageSize int `yaml:"max_page_size"`
}

// DistributionConfig configures the daily distribution job.
type DistributionConfig struct {
	// Enabled controls whether the scheduler runs. Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is the cron expression for the daily run.
	// Default: "0 9 * * *" (daily at 9 AM)
	Schedule string `yaml:"schedule"`

	// Seed seeds the split for reproducible runs. Default: 42
	Seed int64 `yaml:"seed"`

	// UsersQuery selects the users eligible for distribution from the
	// operational database. The result must contain an IIN column.
	UsersQuery string `yaml:"users_query"`
}

// NotifyConfig configures SMTP notifications.
type NotifyConfig struct {
	// Enabled controls whether notifications are sent. Notifications
	// are also skipped when Recipients is empty. Default: false
	Enabled bool `yaml:"enabled"`

	// Host is the SMTP server host.
	Host string `yaml:"host"`

	// Port is the SMTP server port. Default: 587
	Port int `yaml:"port"`

	// Username and Password authenticate against the SMTP server.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// From is the sender address.
	From string `yaml:"from"`

	// Recipients is the list of notification recipients.
	Recipients []string `yaml:"recipients"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text". Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served. A
	// pointer so an explicit false in YAML survives defaulting.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path. Default: "/metrics"
	Path string `yaml:"path"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// Auth contains API key authentication configuration.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig contains API key authentication configuration.
type AuthConfig struct {
	// Enabled controls whether API key auth is enforced. Default: false
	Enabled bool `yaml:"enabled"`

	// Keys is the list of accepted API keys.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig describes one accepted API key.
type APIKeyConfig struct {
	// Key is the secret value presented by clients.
	Key string `yaml:"key"`

	// UserID identifies the key's owner in logs and history records.
	UserID string `yaml:"user_id"`

	// Role is an optional role label ("admin", "analyst").
	Role string `yaml:"role"`

	// Enabled allows disabling a key without removing it. Default: true
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports the effective CORS flag; an unset value means true.
func (c *CORSConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// WALEnabled reports the effective WAL flag; an unset value means true.
func (c *DatasourceConfig) WALEnabled() bool { return c.WALMode == nil || *c.WALMode }

// IsEnabled reports the effective history flag; an unset value means true.
func (c *HistoryConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// IsEnabled reports the effective metrics flag; an unset value means true.
func (c *MetricsConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }
