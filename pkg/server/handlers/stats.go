package handlers

import (
	"net/http"

	"dataquery-hq/dataquery/pkg/history"
)

// Stats handles GET /stats: dashboard aggregates.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats := &history.Stats{}
	if h.History != nil {
		var err error
		stats, err = h.History.GetStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load stats: %v", err)
			return
		}
	}

	activeTheories := 0
	if h.Theories != nil {
		if theories, err := h.Theories.ActiveTheories(r.Context()); err == nil {
			activeTheories = len(theories)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_queries":   stats.TotalQueries,
		"success_queries": stats.SuccessQueries,
		"error_queries":   stats.ErrorQueries,
		"queries_today":   stats.QueriesToday,
		"databases":       len(h.Catalog.Databases()),
		"active_theories": activeTheories,
	})
}
