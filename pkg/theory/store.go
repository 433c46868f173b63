package theory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// dateLayout is the wire format for theory dates.
const dateLayout = "2006-01-02"

// Schema contains the SQL statements to create the theory tables. One
// row per (theory, IIN) membership.
const Schema = `
CREATE TABLE IF NOT EXISTS theories (
    iin TEXT NOT NULL,
    theory_id INTEGER NOT NULL,
    theory_name TEXT NOT NULL,
    theory_description TEXT,
    load_date TIMESTAMP NOT NULL,
    theory_start_date TEXT NOT NULL,
    theory_end_date TEXT NOT NULL,
    created_by TEXT,
    PRIMARY KEY (theory_id, iin)
);

CREATE INDEX IF NOT EXISTS idx_theories_theory_id ON theories(theory_id);
CREATE INDEX IF NOT EXISTS idx_theories_load_date ON theories(load_date);
`

// Config contains configuration for the theory store.
type Config struct {
	// Driver is the database/sql driver name: "sqlite3" or "sqlite".
	Driver string

	// Path is the database file path, normally shared with the history
	// store's app-state database.
	Path string

	// MaxOpenConns caps open connections.
	MaxOpenConns int

	// MaxIdleConns caps idle connections.
	MaxIdleConns int

	// BusyTimeout is the SQLite busy timeout.
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

// CreateRequest describes a theory to create.
type CreateRequest struct {
	Name        string   `json:"theory_name"`
	Description string   `json:"theory_description,omitempty"`
	StartDate   string   `json:"theory_start_date"`
	EndDate     string   `json:"theory_end_date"`
	IINs        []string `json:"user_iins"`
	CreatedBy   string   `json:"created_by,omitempty"`
}

// CreateResult reports a theory creation.
type CreateResult struct {
	TheoryID   int64 `json:"theory_id"`
	UsersAdded int   `json:"users_added"`
}

// Theory is one aggregated campaign cohort.
type Theory struct {
	ID          int64  `json:"theory_id"`
	Name        string `json:"theory_name"`
	Description string `json:"theory_description,omitempty"`
	LoadDate    string `json:"load_date"`
	StartDate   string `json:"theory_start_date"`
	EndDate     string `json:"theory_end_date"`
	UserCount   int64  `json:"user_count"`
	IsActive    bool   `json:"is_active"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// Store persists theory memberships.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Open opens the theory store, creating the schema if needed.
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := slog.Default().With("component", "theory")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open theory store: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create theory schema: %w", err)
	}

	logger.Info("theory store opened", "path", config.Path)

	return &Store{db: db, config: config, logger: logger}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts one membership row per IIN under the next theory id.
// Individual insert failures (duplicate IINs, bad rows) are skipped; the
// result reports how many memberships were actually created.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("theory name is required")
	}
	if len(req.IINs) == 0 {
		return nil, fmt.Errorf("at least one IIN is required")
	}
	if err := validateDate(req.StartDate); err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	if err := validateDate(req.EndDate); err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}

	theoryID, err := s.nextTheoryID(ctx)
	if err != nil {
		return nil, err
	}

	loadDate := time.Now().UTC()
	added := 0
	for _, iin := range req.IINs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO theories
			(iin, theory_id, theory_name, theory_description, load_date,
			 theory_start_date, theory_end_date, created_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			iin, theoryID, req.Name, nullable(req.Description), loadDate,
			req.StartDate, req.EndDate, nullable(req.CreatedBy))
		if err != nil {
			s.logger.Warn("skipping theory member", "theory_id", theoryID, "error", err)
			continue
		}
		added++
	}

	if added == 0 {
		return nil, fmt.Errorf("no memberships created for theory %q", req.Name)
	}

	s.logger.Info("theory created",
		"theory_id", theoryID,
		"name", req.Name,
		"users_added", added,
	)

	return &CreateResult{TheoryID: theoryID, UsersAdded: added}, nil
}

// AddMembers appends IINs to an existing theory, reusing its window.
// Duplicates are skipped. Returns the number of memberships created.
func (s *Store) AddMembers(ctx context.Context, theoryID int64, iins []string) (int, error) {
	var name, startDate, endDate string
	err := s.db.QueryRowContext(ctx, `
		SELECT theory_name, theory_start_date, theory_end_date
		FROM theories WHERE theory_id = ? LIMIT 1`, theoryID).
		Scan(&name, &startDate, &endDate)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("theory %d not found", theoryID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up theory %d: %w", theoryID, err)
	}

	loadDate := time.Now().UTC()
	added := 0
	for _, iin := range iins {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO theories
			(iin, theory_id, theory_name, load_date, theory_start_date, theory_end_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			iin, theoryID, name, loadDate, startDate, endDate)
		if err != nil {
			continue
		}
		added++
	}
	return added, nil
}

// ListActive returns all theories grouped by id, newest window first,
// with is_active computed against today.
func (s *Store) ListActive(ctx context.Context) ([]*Theory, error) {
	today := time.Now().UTC().Format(dateLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			theory_id,
			theory_name,
			COALESCE(theory_description, ''),
			strftime('%Y-%m-%d', MIN(load_date)),
			theory_start_date,
			theory_end_date,
			COUNT(*),
			CASE WHEN ? BETWEEN theory_start_date AND theory_end_date THEN 1 ELSE 0 END,
			COALESCE(MAX(created_by), '')
		FROM theories
		GROUP BY theory_id, theory_name, theory_description, theory_start_date, theory_end_date
		ORDER BY theory_start_date DESC`, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list theories: %w", err)
	}
	defer rows.Close()

	var theories []*Theory
	for rows.Next() {
		var t Theory
		var active int
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.LoadDate,
			&t.StartDate, &t.EndDate, &t.UserCount, &active, &t.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan theory: %w", err)
		}
		t.IsActive = active == 1
		theories = append(theories, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate theories: %w", err)
	}

	return theories, nil
}

// ActiveTheories filters ListActive down to theories whose window covers
// today.
func (s *Store) ActiveTheories(ctx context.Context) ([]*Theory, error) {
	all, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var active []*Theory
	for _, t := range all {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

// nextTheoryID returns MAX(theory_id)+1, starting at 1.
func (s *Store) nextTheoryID(ctx context.Context) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(theory_id), 0) + 1 FROM theories").Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next theory id: %w", err)
	}
	return next, nil
}

// validateDate checks the YYYY-MM-DD wire format.
func validateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("expected YYYY-MM-DD, got %q", s)
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
