package handlers

import (
	"net/http"

	"dataquery-hq/dataquery/pkg/security/auth"
	"dataquery-hq/dataquery/pkg/theory"
)

// CreateTheory handles POST /theories.
func (h *Handlers) CreateTheory(w http.ResponseWriter, r *http.Request) {
	if h.Theories == nil {
		writeError(w, http.StatusServiceUnavailable, "theories are disabled")
		return
	}

	var req theory.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = auth.UserID(r.Context())
	}

	result, err := h.Theories.Create(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to create theory: %v", err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordTheoryCreated()
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListTheories handles GET /theories.
func (h *Handlers) ListTheories(w http.ResponseWriter, r *http.Request) {
	if h.Theories == nil {
		writeError(w, http.StatusServiceUnavailable, "theories are disabled")
		return
	}

	theories, err := h.Theories.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list theories: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"theories": theories,
		"count":    len(theories),
	})
}
