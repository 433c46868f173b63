package handlers

import (
	"net/http"

	"dataquery-hq/dataquery/pkg/stratify"
)

// Stratify handles POST /stratify: splits the posted rows into
// statistically balanced groups.
func (h *Handlers) Stratify(w http.ResponseWriter, r *http.Request) {
	var req stratify.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	result, err := stratify.Stratify(&req)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordStratification("error")
		}
		writeError(w, http.StatusBadRequest, "stratification failed: %v", err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordStratification("success")
	}
	writeJSON(w, http.StatusOK, result)
}
