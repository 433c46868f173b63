package handlers

import (
	"net/http"
)

// RunDistribution handles POST /distribution/run: a manual trigger of
// the daily distribution.
func (h *Handlers) RunDistribution(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "distribution is disabled")
		return
	}

	report := h.Scheduler.RunOnce(r.Context())

	outcome := "success"
	status := http.StatusOK
	if !report.Succeeded() {
		outcome = "error"
		status = http.StatusInternalServerError
	} else if report.Skipped() {
		outcome = "skipped"
	}
	if h.Metrics != nil {
		h.Metrics.RecordDistributionRun(outcome, report.UsersDistributed)
	}

	body := map[string]any{
		"outcome": outcome,
		"report":  report,
	}
	if report.Err != nil {
		body["error"] = report.Err.Error()
	}
	writeJSON(w, status, body)
}

// DistributionStatus handles GET /distribution/status.
func (h *Handlers) DistributionStatus(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "distribution is disabled")
		return
	}

	body := map[string]any{
		"running": h.Scheduler.IsRunning(),
	}
	if next := h.Scheduler.NextRun(); !next.IsZero() {
		body["next_run"] = next
	}
	if last := h.Scheduler.LastReport(); last != nil {
		body["last_report"] = last
	}
	writeJSON(w, http.StatusOK, body)
}
