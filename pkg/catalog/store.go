package catalog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Store serves catalog lookups from an in-memory snapshot. Reload swaps
// the snapshot atomically, so readers always see a consistent catalog.
type Store struct {
	mu      sync.RWMutex
	catalog *Catalog
	path    string
	logger  *slog.Logger
}

// NewStore loads the catalog file at path and returns a store over it.
func NewStore(path string) (*Store, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "catalog")
	logger.Info("catalog loaded",
		"path", path,
		"databases", len(c.Databases),
	)

	return &Store{catalog: c, path: path, logger: logger}, nil
}

// NewStoreFrom wraps an already-built catalog, mainly for tests.
func NewStoreFrom(c *Catalog) *Store {
	return &Store{
		catalog: c,
		logger:  slog.Default().With("component", "catalog"),
	}
}

// Reload re-reads the catalog file. On failure the previous snapshot stays
// in place and the error is returned.
func (s *Store) Reload() error {
	if s.path == "" {
		return fmt.Errorf("catalog store has no backing file")
	}

	c, err := Load(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()

	s.logger.Info("catalog reloaded", "path", s.path, "databases", len(c.Databases))
	return nil
}

// Databases returns all declared databases.
func (s *Store) Databases() []Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Databases
}

// Tables returns the tables of one database, or nil if the database is
// unknown. Database ids compare case-insensitively.
func (s *Store) Tables(databaseID string) []Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db := s.findDatabase(databaseID)
	if db == nil {
		return nil
	}
	return db.Tables
}

// Columns returns the columns of one table, or nil if the database or
// table is unknown.
func (s *Store) Columns(databaseID, table string) []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl := s.findTable(databaseID, table)
	if tbl == nil {
		return nil
	}
	return tbl.Columns
}

// TableAllowed reports whether a table is on the allow-list. Names compare
// case-insensitively, matching how the operational database resolves them.
func (s *Store) TableAllowed(databaseID, table string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findTable(databaseID, table) != nil
}

// ColumnsAllowed reports whether every named column exists on the table.
// An empty column list is allowed (it means "all columns").
func (s *Store) ColumnsAllowed(databaseID, table string, columns []string) bool {
	if len(columns) == 0 {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl := s.findTable(databaseID, table)
	if tbl == nil {
		return false
	}

	allowed := make(map[string]bool, len(tbl.Columns))
	for _, c := range tbl.Columns {
		allowed[strings.ToLower(c.Name)] = true
	}
	for _, c := range columns {
		if !allowed[strings.ToLower(c)] {
			return false
		}
	}
	return true
}

// TextColumns returns the names of text-typed columns of a table, used to
// expand a free-text search into per-column contains filters.
func (s *Store) TextColumns(databaseID, table string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl := s.findTable(databaseID, table)
	if tbl == nil {
		return nil
	}

	var names []string
	for _, c := range tbl.Columns {
		if textColumnTypes[strings.ToUpper(c.Type)] {
			names = append(names, c.Name)
		}
	}
	return names
}

// findDatabase resolves a database id case-insensitively. Callers must
// hold the read lock.
func (s *Store) findDatabase(databaseID string) *Database {
	for i := range s.catalog.Databases {
		if strings.EqualFold(s.catalog.Databases[i].ID, databaseID) {
			return &s.catalog.Databases[i]
		}
	}
	return nil
}

// findTable resolves a table name case-insensitively. Callers must hold
// the read lock.
func (s *Store) findTable(databaseID, table string) *Table {
	db := s.findDatabase(databaseID)
	if db == nil {
		return nil
	}
	for i := range db.Tables {
		if strings.EqualFold(db.Tables[i].Name, table) {
			return &db.Tables[i]
		}
	}
	return nil
}
