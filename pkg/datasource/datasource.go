package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Config contains configuration for the datasource connection.
type Config struct {
	// Driver is the database/sql driver name: "sqlite3" or "sqlite".
	Driver string

	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// QueryTimeout bounds a single query execution.
	// Default: 30 seconds
	QueryTimeout time.Duration
}

// DefaultConfig returns the default datasource configuration.
func DefaultConfig() *Config {
	return &Config{
		Driver:       "sqlite3",
		Path:         "data/operational.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
		QueryTimeout: 30 * time.Second,
	}
}

// ResultSet holds the rows returned by a query in column order.
type ResultSet struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Datasource runs read queries against the operational database.
type Datasource struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Open opens the datasource connection and configures the pool.
func Open(config *Config) (*Datasource, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := slog.Default().With("component", "datasource")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewExecError("open", "", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	d := &Datasource{db: db, config: config, logger: logger}

	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("datasource opened",
		"driver", config.Driver,
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return d, nil
}

// initialize applies the SQLite pragmas.
func (d *Datasource) initialize() error {
	if d.config.WALMode {
		if _, err := d.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewExecError("enable_wal", "", err)
		}
	}

	busyTimeoutMs := d.config.BusyTimeout.Milliseconds()
	if _, err := d.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewExecError("set_busy_timeout", "", err)
	}

	return nil
}

// Execute runs a query and collects the full result set. The query runs
// under the configured query timeout in addition to the caller's context.
func (d *Datasource) Execute(ctx context.Context, sqlText string) (*ResultSet, error) {
	if d.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.QueryTimeout)
		defer cancel()
	}

	start := time.Now()

	rows, err := d.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, NewExecError("query", sqlText, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, NewExecError("columns", sqlText, err)
	}

	result := &ResultSet{Columns: columns, Rows: []map[string]any{}}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, NewExecError("scan", sqlText, err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, NewExecError("iterate", sqlText, err)
	}

	result.RowCount = len(result.Rows)

	d.logger.Debug("query executed",
		"rows", result.RowCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// ExecuteCount runs a single-value count query and returns the count.
func (d *Datasource) ExecuteCount(ctx context.Context, sqlText string) (int64, error) {
	if d.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.QueryTimeout)
		defer cancel()
	}

	var count int64
	if err := d.db.QueryRowContext(ctx, sqlText).Scan(&count); err != nil {
		return 0, NewExecError("count", sqlText, err)
	}
	return count, nil
}

// Ping verifies the database connection is alive.
func (d *Datasource) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return NewExecError("ping", "", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (d *Datasource) Close() error {
	return d.db.Close()
}

// normalizeValue converts driver-specific scan results into JSON-friendly
// values. SQLite drivers return []byte for text columns.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
