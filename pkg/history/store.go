package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Statuses recorded for executed queries.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Config contains configuration for the history store.
type Config struct {
	// Driver is the database/sql driver name: "sqlite3" or "sqlite".
	Driver string

	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int

	// BusyTimeout is the duration to wait when the database is locked.
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		Driver:       "sqlite3",
		Path:         "data/appstate.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

// Record is one executed-query history entry.
type Record struct {
	ID           string    `json:"id"`
	DatabaseID   string    `json:"database_id"`
	Table        string    `json:"table"`
	SQL          string    `json:"sql"`
	Status       string    `json:"status"`
	RowCount     int       `json:"row_count"`
	ExecutionMs  int64     `json:"execution_ms"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// SavedQuery is a reusable query definition.
type SavedQuery struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DatabaseID  string    `json:"database_id"`
	Table       string    `json:"table"`
	RequestJSON string    `json:"request"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows and pages a history listing.
type ListFilter struct {
	DatabaseID string
	Status     string
	UserID     string
	Page       int // 1-based; values < 1 mean first page
	PageSize   int
}

// Stats aggregates history counts for the dashboard.
type Stats struct {
	TotalQueries   int64 `json:"total_queries"`
	SuccessQueries int64 `json:"success_queries"`
	ErrorQueries   int64 `json:"error_queries"`
	QueriesToday   int64 `json:"queries_today"`
}

// Store persists query history and saved queries.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Open opens the history store, creating the schema if needed.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := slog.Default().With("component", "history")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStoreError("open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Store{db: db, config: config, logger: logger}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store opened", "path", config.Path, "driver", config.Driver)

	return s, nil
}

// initialize sets pragmas and creates the schema.
func (s *Store) initialize() error {
	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStoreError("set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStoreError("create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStoreError("insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStoreError("get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStoreError("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the state database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordQuery stores one history entry. A missing ID or CreatedAt is
// filled in.
func (s *Store) RecordQuery(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := sq.Insert("query_history").
		Columns("id", "database_id", "table_name", "sql_text", "status",
			"row_count", "execution_ms", "error_message", "user_id", "created_at").
		Values(rec.ID, rec.DatabaseID, rec.Table, rec.SQL, rec.Status,
			rec.RowCount, rec.ExecutionMs, nullable(rec.ErrorMessage), nullable(rec.UserID), rec.CreatedAt)

	sqlText, args, err := query.ToSql()
	if err != nil {
		return NewStoreError("record", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
		return NewStoreError("record", err)
	}

	return nil
}

// List returns history entries newest first, honoring the filter and
// paging. The total matching count is returned alongside the page.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Record, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}

	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.DatabaseID != "" {
			b = b.Where(sq.Eq{"database_id": filter.DatabaseID})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		if filter.UserID != "" {
			b = b.Where(sq.Eq{"user_id": filter.UserID})
		}
		return b
	}

	countSQL, countArgs, err := where(sq.Select("COUNT(*)").From("query_history")).ToSql()
	if err != nil {
		return nil, 0, NewStoreError("list", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, NewStoreError("list", err)
	}

	listSQL, listArgs, err := where(sq.
		Select("id", "database_id", "table_name", "sql_text", "status",
			"row_count", "execution_ms", "error_message", "user_id", "created_at").
		From("query_history")).
		OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize)).
		ToSql()
	if err != nil {
		return nil, 0, NewStoreError("list", err)
	}

	rows, err := s.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, NewStoreError("list", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var errMsg, userID sql.NullString
		if err := rows.Scan(&rec.ID, &rec.DatabaseID, &rec.Table, &rec.SQL, &rec.Status,
			&rec.RowCount, &rec.ExecutionMs, &errMsg, &userID, &rec.CreatedAt); err != nil {
			return nil, 0, NewStoreError("list", err)
		}
		rec.ErrorMessage = errMsg.String
		rec.UserID = userID.String
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, NewStoreError("list", err)
	}

	return records, total, nil
}

// GetStats aggregates history counts for the dashboard stats endpoint.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM query_history`,
		StatusSuccess, StatusError, startOfToday())
	if err := row.Scan(&stats.TotalQueries, &stats.SuccessQueries, &stats.ErrorQueries, &stats.QueriesToday); err != nil {
		return nil, NewStoreError("stats", err)
	}

	return stats, nil
}

// DeleteOlderThan removes history entries created before the cutoff and
// returns how many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM query_history WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, NewStoreError("prune", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, NewStoreError("prune", err)
	}
	return deleted, nil
}

// SaveQuery persists a saved query definition.
func (s *Store) SaveQuery(ctx context.Context, q *SavedQuery) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	sqlText, args, err := sq.Insert("saved_queries").
		Columns("id", "name", "description", "database_id", "table_name",
			"request_json", "created_by", "created_at").
		Values(q.ID, q.Name, nullable(q.Description), q.DatabaseID, q.Table,
			q.RequestJSON, nullable(q.CreatedBy), q.CreatedAt).
		ToSql()
	if err != nil {
		return NewStoreError("save", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlText, args...); err != nil {
		return NewStoreError("save", err)
	}

	return nil
}

// ListSavedQueries returns all saved queries, newest first.
func (s *Store) ListSavedQueries(ctx context.Context) ([]*SavedQuery, error) {
	sqlText, args, err := sq.
		Select("id", "name", "description", "database_id", "table_name",
			"request_json", "created_by", "created_at").
		From("saved_queries").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, NewStoreError("list_saved", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, NewStoreError("list_saved", err)
	}
	defer rows.Close()

	var queries []*SavedQuery
	for rows.Next() {
		var q SavedQuery
		var desc, createdBy sql.NullString
		if err := rows.Scan(&q.ID, &q.Name, &desc, &q.DatabaseID, &q.Table,
			&q.RequestJSON, &createdBy, &q.CreatedAt); err != nil {
			return nil, NewStoreError("list_saved", err)
		}
		q.Description = desc.String
		q.CreatedBy = createdBy.String
		queries = append(queries, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStoreError("list_saved", err)
	}

	return queries, nil
}

// DeleteSavedQuery removes one saved query. ErrNotFound is returned when
// the id does not exist.
func (s *Store) DeleteSavedQuery(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saved_queries WHERE id = ?", id)
	if err != nil {
		return NewStoreError("delete_saved", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStoreError("delete_saved", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// nullable converts empty strings to NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// startOfToday returns midnight UTC of the current day.
func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
