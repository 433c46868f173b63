package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"dataquery-hq/dataquery/pkg/catalog"
	"dataquery-hq/dataquery/pkg/config"
	"dataquery-hq/dataquery/pkg/datasource"
	"dataquery-hq/dataquery/pkg/history"
	"dataquery-hq/dataquery/pkg/theory"
)

// newTestHandlers builds a handler bundle backed by temporary SQLite
// databases with a small seeded users table.
func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()

	dir := t.TempDir()
	opPath := filepath.Join(dir, "operational.db")

	db, err := sql.Open("sqlite3", opPath)
	if err != nil {
		t.Fatalf("failed to open seed database: %v", err)
	}
	stmts := []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT, status TEXT)`,
		`INSERT INTO users VALUES (1, 'Alice', 'alice@example.com', 'active')`,
		`INSERT INTO users VALUES (2, 'Bob', 'bob@example.com', 'active')`,
		`INSERT INTO users VALUES (3, 'Carol', 'carol@example.com', 'inactive')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to seed database: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close seed database: %v", err)
	}

	dsConfig := datasource.DefaultConfig()
	dsConfig.Path = opPath
	ds, err := datasource.Open(dsConfig)
	if err != nil {
		t.Fatalf("failed to open datasource: %v", err)
	}
	t.Cleanup(func() { ds.Close() })

	histConfig := history.DefaultConfig()
	histConfig.Path = filepath.Join(dir, "appstate.db")
	hist, err := history.Open(histConfig)
	if err != nil {
		t.Fatalf("failed to open history store: %v", err)
	}
	t.Cleanup(func() { hist.Close() })

	theoryConfig := theory.DefaultConfig()
	theoryConfig.Path = filepath.Join(dir, "appstate.db")
	theories, err := theory.Open(theoryConfig)
	if err != nil {
		t.Fatalf("failed to open theory store: %v", err)
	}
	t.Cleanup(func() { theories.Close() })

	store := catalog.NewStoreFrom(&catalog.Catalog{
		Databases: []catalog.Database{
			{
				ID:   "operational",
				Name: "Operational",
				Tables: []catalog.Table{
					{
						Name: "users",
						Columns: []catalog.Column{
							{Name: "id", Type: "INTEGER"},
							{Name: "name", Type: "TEXT"},
							{Name: "email", Type: "TEXT"},
							{Name: "status", Type: "TEXT"},
						},
					},
				},
			},
		},
	})

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	return &Handlers{
		Catalog:    store,
		Datasource: ds,
		History:    hist,
		Theories:   theories,
		Config:     cfg,
	}
}

// doRequest invokes a handler directly. Path values are set on the
// request the way the router would.
func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, body any, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// decodeBody parses a JSON response body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestListDatabases(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.ListDatabases, http.MethodGet, "/databases", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["count"].(float64) != 1 {
		t.Errorf("expected 1 database, got %v", body["count"])
	}
}

func TestListTables(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.ListTables, http.MethodGet, "/databases/operational/tables", nil,
		map[string]string{"id": "operational"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["count"].(float64) != 1 {
		t.Errorf("expected 1 table, got %v", body["count"])
	}

	rec = doRequest(t, h.ListTables, http.MethodGet, "/databases/nope/tables", nil,
		map[string]string{"id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown database, got %d", rec.Code)
	}
}

func TestListColumns(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.ListColumns, http.MethodGet, "/databases/operational/tables/users/columns", nil,
		map[string]string{"id": "operational", "table": "users"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["count"].(float64) != 4 {
		t.Errorf("expected 4 columns, got %v", body["count"])
	}

	rec = doRequest(t, h.ListColumns, http.MethodGet, "/databases/operational/tables/secrets/columns", nil,
		map[string]string{"id": "operational", "table": "secrets"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown table, got %d", rec.Code)
	}
}

func TestTestConnection(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.TestConnection, http.MethodPost, "/databases/test-connection",
		map[string]string{"database_id": "operational"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["connected"] != true {
		t.Errorf("expected connected=true, got %v", body["connected"])
	}

	rec = doRequest(t, h.TestConnection, http.MethodPost, "/databases/test-connection",
		map[string]string{"database_id": "nope"}, nil)
	if body := decodeBody(t, rec); body["connected"] != false {
		t.Errorf("expected connected=false for unknown database, got %v", body["connected"])
	}
}

func TestExecuteQuery(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.ExecuteQuery, http.MethodPost, "/query/execute", map[string]any{
		"database_id": "operational",
		"table":       "users",
		"limit":       10,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["row_count"].(float64) != 3 {
		t.Errorf("expected 3 rows, got %v", body["row_count"])
	}
	if body["sql"].(string) == "" {
		t.Error("expected compiled SQL in response")
	}

	stats, err := h.History.GetStats(context.Background())
	if err != nil {
		t.Fatalf("failed to load stats: %v", err)
	}
	if stats.TotalQueries != 1 || stats.SuccessQueries != 1 {
		t.Errorf("expected 1 successful history record, got %+v", stats)
	}
}

func TestExecuteQueryFilters(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.ExecuteQuery, http.MethodPost, "/query/execute", map[string]any{
		"database_id": "operational",
		"table":       "users",
		"filters": []map[string]any{
			{"column": "status", "operator": "equals", "value": "active"},
		},
		"sort":  map[string]string{"column": "id", "direction": "DESC"},
		"limit": 10,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["row_count"].(float64) != 2 {
		t.Errorf("expected 2 active users, got %v", body["row_count"])
	}
	rows := body["rows"].([]any)
	first := rows[0].(map[string]any)
	if first["id"].(float64) != 2 {
		t.Errorf("expected descending order, first id = %v", first["id"])
	}
}

func TestExecuteQueryInvalidRequest(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.ExecuteQuery, http.MethodPost, "/query/execute", map[string]any{
		"database_id": "operational",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["valid"] != false {
		t.Errorf("expected validation result, got %v", body)
	}
}

func TestExecuteQueryAccessControl(t *testing.T) {
	h := newTestHandlers(t)

	// Table outside the catalog.
	rec := doRequest(t, h.ExecuteQuery, http.MethodPost, "/query/execute", map[string]any{
		"database_id": "operational",
		"table":       "secrets",
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for unknown table, got %d", rec.Code)
	}

	// Column outside the allowed set.
	rec = doRequest(t, h.ExecuteQuery, http.MethodPost, "/query/execute", map[string]any{
		"database_id": "operational",
		"table":       "users",
		"columns":     []string{"password"},
	}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for unknown column, got %d", rec.Code)
	}
}

func TestCountQuery(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.CountQuery, http.MethodPost, "/query/count", map[string]any{
		"database_id": "operational",
		"table":       "users",
		"filters": []map[string]any{
			{"column": "status", "operator": "equals", "value": "active"},
		},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["count"].(float64) != 2 {
		t.Errorf("expected count 2, got %v", body["count"])
	}
}

func TestQueryHistoryEndpoint(t *testing.T) {
	h := newTestHandlers(t)

	doRequest(t, h.ExecuteQuery, http.MethodPost, "/query/execute", map[string]any{
		"database_id": "operational",
		"table":       "users",
	}, nil)

	rec := doRequest(t, h.QueryHistory, http.MethodGet, "/query/history?database_id=operational", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["total_count"].(float64) != 1 {
		t.Errorf("expected 1 history record, got %v", body["total_count"])
	}
}

func TestSavedQueryLifecycle(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.SaveQuery, http.MethodPost, "/query/save", map[string]any{
		"name": "active users",
		"request": map[string]any{
			"database_id": "operational",
			"table":       "users",
		},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	saved := decodeBody(t, rec)
	id := saved["id"].(string)
	if id == "" {
		t.Fatal("expected generated saved query id")
	}

	rec = doRequest(t, h.ListSavedQueries, http.MethodGet, "/query/saved", nil, nil)
	if body := decodeBody(t, rec); body["count"].(float64) != 1 {
		t.Errorf("expected 1 saved query, got %v", body["count"])
	}

	rec = doRequest(t, h.DeleteSavedQuery, http.MethodDelete, "/query/saved/"+id, nil,
		map[string]string{"id": id})
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, h.DeleteSavedQuery, http.MethodDelete, "/query/saved/"+id, nil,
		map[string]string{"id": id})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for repeated delete, got %d", rec.Code)
	}
}

func TestSaveQueryRequiresName(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.SaveQuery, http.MethodPost, "/query/save", map[string]any{
		"request": map[string]any{
			"database_id": "operational",
			"table":       "users",
		},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a name, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	h := newTestHandlers(t)

	doRequest(t, h.ExecuteQuery, http.MethodPost, "/query/execute", map[string]any{
		"database_id": "operational",
		"table":       "users",
	}, nil)

	rec := doRequest(t, h.Stats, http.MethodGet, "/stats", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["total_queries"].(float64) != 1 {
		t.Errorf("expected 1 total query, got %v", body["total_queries"])
	}
	if body["databases"].(float64) != 1 {
		t.Errorf("expected 1 database, got %v", body["databases"])
	}
}
