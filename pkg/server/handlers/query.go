package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"dataquery-hq/dataquery/pkg/history"
	"dataquery-hq/dataquery/pkg/querybuilder"
	"dataquery-hq/dataquery/pkg/security/auth"
)

// ExecuteQuery handles POST /query/execute: validate, compile, run and
// record the query.
func (h *Handlers) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req querybuilder.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if vr := querybuilder.Validate(req); !vr.Valid {
		writeJSON(w, http.StatusBadRequest, vr)
		return
	}

	if status, msg := h.checkAccess(req); status != 0 {
		writeError(w, status, "%s", msg)
		return
	}

	req.Limit = h.clampLimit(req.Limit)
	sqlText := querybuilder.BuildQuery(req)

	start := time.Now()
	result, err := h.Datasource.Execute(r.Context(), sqlText)
	elapsed := time.Since(start)

	userID := auth.UserID(r.Context())
	if err != nil {
		h.recordHistory(r, &history.Record{
			DatabaseID:   req.DatabaseID,
			Table:        req.Table,
			SQL:          sqlText,
			Status:       history.StatusError,
			ExecutionMs:  elapsed.Milliseconds(),
			ErrorMessage: err.Error(),
			UserID:       userID,
		})
		if h.Metrics != nil {
			h.Metrics.RecordQuery(req.DatabaseID, req.Table, "error", elapsed, -1)
		}
		writeError(w, http.StatusInternalServerError, "query failed: %v", err)
		return
	}

	h.recordHistory(r, &history.Record{
		DatabaseID:  req.DatabaseID,
		Table:       req.Table,
		SQL:         sqlText,
		Status:      history.StatusSuccess,
		RowCount:    result.RowCount,
		ExecutionMs: elapsed.Milliseconds(),
		UserID:      userID,
	})
	if h.Metrics != nil {
		h.Metrics.RecordQuery(req.DatabaseID, req.Table, "success", elapsed, result.RowCount)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sql":          sqlText,
		"columns":      result.Columns,
		"rows":         result.Rows,
		"row_count":    result.RowCount,
		"execution_ms": elapsed.Milliseconds(),
	})
}

// CountQuery handles POST /query/count.
func (h *Handlers) CountQuery(w http.ResponseWriter, r *http.Request) {
	var req querybuilder.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	if vr := querybuilder.Validate(req); !vr.Valid {
		writeJSON(w, http.StatusBadRequest, vr)
		return
	}

	if status, msg := h.checkAccess(req); status != 0 {
		writeError(w, status, "%s", msg)
		return
	}

	sqlText := querybuilder.BuildCountQuery(req)
	count, err := h.Datasource.ExecuteCount(r.Context(), sqlText)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "count failed: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sql":   sqlText,
		"count": count,
	})
}

// QueryHistory handles GET /query/history.
func (h *Handlers) QueryHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusServiceUnavailable, "query history is disabled")
		return
	}

	q := r.URL.Query()
	filter := history.ListFilter{
		DatabaseID: q.Get("database_id"),
		Status:     q.Get("status"),
		UserID:     q.Get("user_id"),
		Page:       intParam(q.Get("page"), 1),
		PageSize:   intParam(q.Get("page_size"), h.Config.History.DefaultPageSize),
	}
	if max := h.Config.History.MaxPageSize; max > 0 && filter.PageSize > max {
		filter.PageSize = max
	}

	records, total, err := h.History.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list history: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records":     records,
		"total_count": total,
		"page":        filter.Page,
		"page_size":   filter.PageSize,
	})
}

// saveQueryRequest is the POST /query/save body.
type saveQueryRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Request     querybuilder.Request `json:"request"`
}

// SaveQuery handles POST /query/save.
func (h *Handlers) SaveQuery(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusServiceUnavailable, "query history is disabled")
		return
	}

	var req saveQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if vr := querybuilder.Validate(req.Request); !vr.Valid {
		writeJSON(w, http.StatusBadRequest, vr)
		return
	}

	requestJSON, err := json.Marshal(req.Request)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode request: %v", err)
		return
	}

	saved := &history.SavedQuery{
		Name:        req.Name,
		Description: req.Description,
		DatabaseID:  req.Request.DatabaseID,
		Table:       req.Request.Table,
		RequestJSON: string(requestJSON),
		CreatedBy:   auth.UserID(r.Context()),
	}
	if err := h.History.SaveQuery(r.Context(), saved); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save query: %v", err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// ListSavedQueries handles GET /query/saved.
func (h *Handlers) ListSavedQueries(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusServiceUnavailable, "query history is disabled")
		return
	}

	queries, err := h.History.ListSavedQueries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list saved queries: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"queries": queries,
		"count":   len(queries),
	})
}

// DeleteSavedQuery handles DELETE /query/saved/{id}.
func (h *Handlers) DeleteSavedQuery(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusServiceUnavailable, "query history is disabled")
		return
	}

	id := r.PathValue("id")
	if err := h.History.DeleteSavedQuery(r.Context(), id); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "saved query %q not found", id)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete saved query: %v", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// checkAccess verifies the request stays inside the catalog allow-list.
// Returns a zero status when access is granted.
func (h *Handlers) checkAccess(req querybuilder.Request) (int, string) {
	if !h.Catalog.TableAllowed(req.DatabaseID, req.Table) {
		return http.StatusForbidden, "table " + req.Table + " is not allowed in database " + req.DatabaseID
	}

	var referenced []string
	referenced = append(referenced, req.Columns...)
	for _, f := range req.Filters {
		if f.Column != "" {
			referenced = append(referenced, f.Column)
		}
	}
	if req.Sort.Column != "" {
		referenced = append(referenced, req.Sort.Column)
	}
	if !h.Catalog.ColumnsAllowed(req.DatabaseID, req.Table, referenced) {
		return http.StatusForbidden, "request references columns outside the allowed set"
	}

	return 0, ""
}

// clampLimit applies the configured default and maximum row limits.
func (h *Handlers) clampLimit(limit int) int {
	if limit <= 0 {
		limit = h.Config.Datasource.DefaultLimit
	}
	if max := h.Config.Datasource.MaxLimit; max > 0 && limit > max {
		limit = max
	}
	return limit
}

// recordHistory stores a history record, logging failures instead of
// surfacing them to the client.
func (h *Handlers) recordHistory(r *http.Request, rec *history.Record) {
	if h.History == nil {
		return
	}
	if err := h.History.RecordQuery(r.Context(), rec); err != nil {
		slog.ErrorContext(r.Context(), "failed to record query history", "error", err)
	}
}

// intParam parses a positive integer query parameter with a fallback.
func intParam(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
