package handlers

import (
	"net/http"
)

// ListDatabases handles GET /databases.
func (h *Handlers) ListDatabases(w http.ResponseWriter, r *http.Request) {
	databases := h.Catalog.Databases()
	writeJSON(w, http.StatusOK, map[string]any{
		"databases": databases,
		"count":     len(databases),
	})
}

// ListTables handles GET /databases/{id}/tables.
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	databaseID := r.PathValue("id")

	tables := h.Catalog.Tables(databaseID)
	if tables == nil {
		writeError(w, http.StatusNotFound, "unknown database %q", databaseID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"database_id": databaseID,
		"tables":      tables,
		"count":       len(tables),
	})
}

// ListColumns handles GET /databases/{id}/tables/{table}/columns.
func (h *Handlers) ListColumns(w http.ResponseWriter, r *http.Request) {
	databaseID := r.PathValue("id")
	table := r.PathValue("table")

	if !h.Catalog.TableAllowed(databaseID, table) {
		writeError(w, http.StatusNotFound, "unknown table %q in database %q", table, databaseID)
		return
	}

	columns := h.Catalog.Columns(databaseID, table)
	writeJSON(w, http.StatusOK, map[string]any{
		"database_id": databaseID,
		"table":       table,
		"columns":     columns,
		"count":       len(columns),
	})
}

// testConnectionRequest is the POST /databases/test-connection body.
type testConnectionRequest struct {
	DatabaseID string `json:"database_id"`
}

// TestConnection handles POST /databases/test-connection.
func (h *Handlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req testConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if req.DatabaseID != "" && len(h.Catalog.Tables(req.DatabaseID)) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"connected": false,
			"message":   "unknown database " + req.DatabaseID,
		})
		return
	}

	if err := h.Datasource.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"connected": false,
			"message":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"connected": true,
		"message":   "connection ok",
	})
}
