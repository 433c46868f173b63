package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"dataquery-hq/dataquery/pkg/export"
	"dataquery-hq/dataquery/pkg/querybuilder"
)

const (
	defaultDataPageSize = 25
	maxDataPageSize     = 100
	exportRowLimit      = 10000

	// maxSearchColumns bounds how many text columns a free-text search
	// fans out over.
	maxSearchColumns = 3
)

// GetData handles GET /data: tabular browse with free-text search,
// sorting and pagination.
func (h *Handlers) GetData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	databaseID := q.Get("database_id")
	table := q.Get("table")
	if databaseID == "" || table == "" {
		writeError(w, http.StatusBadRequest, "database_id and table are required")
		return
	}
	if !h.Catalog.TableAllowed(databaseID, table) {
		writeError(w, http.StatusForbidden, "table %s is not allowed in database %s", table, databaseID)
		return
	}

	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), defaultDataPageSize)
	if limit > maxDataPageSize {
		limit = maxDataPageSize
	}

	req := querybuilder.Request{
		DatabaseID: databaseID,
		Table:      table,
		// Fetch everything up to the requested page, then slice.
		Limit: limit * page,
	}

	if search := q.Get("search"); search != "" {
		textColumns := h.Catalog.TextColumns(databaseID, table)
		if len(textColumns) > maxSearchColumns {
			textColumns = textColumns[:maxSearchColumns]
		}
		for _, col := range textColumns {
			req.Filters = append(req.Filters, querybuilder.Filter{
				Column:   col,
				Operator: querybuilder.OpContains,
				Value:    search,
			})
		}
	}

	if sortBy := q.Get("sort_by"); sortBy != "" {
		if !h.Catalog.ColumnsAllowed(databaseID, table, []string{sortBy}) {
			writeError(w, http.StatusBadRequest, "unknown sort column %q", sortBy)
			return
		}
		direction := strings.ToUpper(q.Get("sort_order"))
		if direction != "DESC" {
			direction = "ASC"
		}
		req.Sort = querybuilder.Sort{Column: sortBy, Direction: direction}
	}

	result, err := h.Datasource.Execute(r.Context(), querybuilder.BuildQuery(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch data: %v", err)
		return
	}

	totalCount := result.RowCount
	start := (page - 1) * limit
	end := start + limit
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":        result.Rows[start:end],
		"columns":     result.Columns,
		"total_count": totalCount,
		"page":        page,
		"limit":       limit,
		"total_pages": int(math.Ceil(float64(totalCount) / float64(limit))),
	})
}

// TableStats handles GET /data/stats/{table}: row count and freshness
// for one table.
func (h *Handlers) TableStats(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	databaseID := r.URL.Query().Get("database_id")
	if databaseID == "" {
		writeError(w, http.StatusBadRequest, "database_id is required")
		return
	}
	if !h.Catalog.TableAllowed(databaseID, table) {
		writeError(w, http.StatusForbidden, "table %s is not allowed in database %s", table, databaseID)
		return
	}

	req := querybuilder.Request{DatabaseID: databaseID, Table: table}
	total, err := h.Datasource.ExecuteCount(r.Context(), querybuilder.BuildCountQuery(req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch table stats: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"table_name":   table,
		"total_rows":   total,
		"last_updated": time.Now().UTC().Format(time.RFC3339),
	})
}

// ExportData handles GET /data/export: full-table download as CSV or
// JSON with attachment headers.
func (h *Handlers) ExportData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	databaseID := q.Get("database_id")
	table := q.Get("table")
	if databaseID == "" || table == "" {
		writeError(w, http.StatusBadRequest, "database_id and table are required")
		return
	}
	if !h.Catalog.TableAllowed(databaseID, table) {
		writeError(w, http.StatusForbidden, "table %s is not allowed in database %s", table, databaseID)
		return
	}

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, "unsupported export format %q", format)
		return
	}

	req := querybuilder.Request{
		DatabaseID: databaseID,
		Table:      table,
		Limit:      exportRowLimit,
	}

	result, err := h.Datasource.Execute(r.Context(), querybuilder.BuildQuery(req))
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordExport(format, "error")
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch data: %v", err)
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", databaseID, table, format)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		exporter := &export.CSVExporter{IncludeHeader: true}
		err = exporter.Export(r.Context(), result, w)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		exporter := &export.JSONExporter{}
		err = exporter.Export(r.Context(), result, w)
	}
	if err != nil {
		// Headers are already written; nothing to do beyond metrics.
		if h.Metrics != nil {
			h.Metrics.RecordExport(format, "error")
		}
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordExport(format, "success")
	}
}
