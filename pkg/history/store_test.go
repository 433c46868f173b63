package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	config := DefaultConfig()
	config.Path = filepath.Join(t.TempDir(), "appstate.db")

	s, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeRecord(t *testing.T, s *Store, rec *Record) *Record {
	t.Helper()
	if err := s.RecordQuery(context.Background(), rec); err != nil {
		t.Fatalf("failed to record query: %v", err)
	}
	return rec
}

func TestRecordQuery(t *testing.T) {
	s := newTestStore(t)

	rec := makeRecord(t, s, &Record{
		DatabaseID:  "operational",
		Table:       "users",
		SQL:         "SELECT * FROM users LIMIT 10",
		Status:      StatusSuccess,
		RowCount:    10,
		ExecutionMs: 12,
		UserID:      "analyst1",
	})

	if rec.ID == "" {
		t.Error("expected generated ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	records, total, err := s.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 || len(records) != 1 {
		t.Fatalf("expected 1 record, got total=%d len=%d", total, len(records))
	}
	if records[0].SQL != rec.SQL {
		t.Errorf("SQL = %q, want %q", records[0].SQL, rec.SQL)
	}
	if records[0].UserID != "analyst1" {
		t.Errorf("UserID = %q, want analyst1", records[0].UserID)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		makeRecord(t, s, &Record{
			DatabaseID: "operational",
			Table:      "users",
			SQL:        "SELECT 1",
			Status:     StatusSuccess,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	records, _, err := s.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Error("records should be ordered newest first")
		}
	}
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)

	makeRecord(t, s, &Record{DatabaseID: "operational", Table: "users", SQL: "q1", Status: StatusSuccess, UserID: "a"})
	makeRecord(t, s, &Record{DatabaseID: "operational", Table: "users", SQL: "q2", Status: StatusError, ErrorMessage: "boom", UserID: "a"})
	makeRecord(t, s, &Record{DatabaseID: "analytics", Table: "events", SQL: "q3", Status: StatusSuccess, UserID: "b"})

	tests := []struct {
		name   string
		filter ListFilter
		want   int64
	}{
		{"no filter", ListFilter{}, 3},
		{"by database", ListFilter{DatabaseID: "operational"}, 2},
		{"by status", ListFilter{Status: StatusError}, 1},
		{"by user", ListFilter{UserID: "b"}, 1},
		{"combined", ListFilter{DatabaseID: "operational", Status: StatusSuccess}, 1},
		{"no match", ListFilter{DatabaseID: "missing"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := s.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.want {
				t.Errorf("total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestListPaging(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		makeRecord(t, s, &Record{DatabaseID: "operational", Table: "users", SQL: "q", Status: StatusSuccess})
	}

	records, total, err := s.List(context.Background(), ListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(records) != 2 {
		t.Errorf("page len = %d, want 2", len(records))
	}

	records, _, err = s.List(context.Background(), ListFilter{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("last page len = %d, want 1", len(records))
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)

	makeRecord(t, s, &Record{DatabaseID: "d", Table: "t", SQL: "q", Status: StatusSuccess})
	makeRecord(t, s, &Record{DatabaseID: "d", Table: "t", SQL: "q", Status: StatusSuccess})
	makeRecord(t, s, &Record{DatabaseID: "d", Table: "t", SQL: "q", Status: StatusError})
	makeRecord(t, s, &Record{
		DatabaseID: "d", Table: "t", SQL: "q", Status: StatusSuccess,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -2),
	})

	stats, err := s.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if stats.TotalQueries != 4 {
		t.Errorf("TotalQueries = %d, want 4", stats.TotalQueries)
	}
	if stats.SuccessQueries != 3 {
		t.Errorf("SuccessQueries = %d, want 3", stats.SuccessQueries)
	}
	if stats.ErrorQueries != 1 {
		t.Errorf("ErrorQueries = %d, want 1", stats.ErrorQueries)
	}
	if stats.QueriesToday != 3 {
		t.Errorf("QueriesToday = %d, want 3", stats.QueriesToday)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	s := newTestStore(t)

	makeRecord(t, s, &Record{
		DatabaseID: "d", Table: "t", SQL: "old", Status: StatusSuccess,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -100),
	})
	makeRecord(t, s, &Record{DatabaseID: "d", Table: "t", SQL: "new", Status: StatusSuccess})

	deleted, err := s.DeleteOlderThan(context.Background(), time.Now().UTC().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	_, total, _ := s.List(context.Background(), ListFilter{})
	if total != 1 {
		t.Errorf("remaining = %d, want 1", total)
	}
}

func TestSavedQueries(t *testing.T) {
	s := newTestStore(t)

	q := &SavedQuery{
		Name:        "active users",
		Description: "users with status ACTIVE",
		DatabaseID:  "operational",
		Table:       "users",
		RequestJSON: `{"table":"users"}`,
		CreatedBy:   "analyst1",
	}
	if err := s.SaveQuery(context.Background(), q); err != nil {
		t.Fatalf("SaveQuery() error = %v", err)
	}
	if q.ID == "" {
		t.Error("expected generated ID")
	}

	queries, err := s.ListSavedQueries(context.Background())
	if err != nil {
		t.Fatalf("ListSavedQueries() error = %v", err)
	}
	if len(queries) != 1 || queries[0].Name != "active users" {
		t.Fatalf("ListSavedQueries() = %v, want one entry", queries)
	}

	if err := s.DeleteSavedQuery(context.Background(), q.ID); err != nil {
		t.Fatalf("DeleteSavedQuery() error = %v", err)
	}

	queries, _ = s.ListSavedQueries(context.Background())
	if len(queries) != 0 {
		t.Errorf("expected no saved queries after delete, got %d", len(queries))
	}
}

func TestDeleteSavedQueryNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteSavedQuery(context.Background(), "missing-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
