package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dataquery-hq/dataquery/pkg/catalog"
	"dataquery-hq/dataquery/pkg/config"
	"dataquery-hq/dataquery/pkg/datasource"
	"dataquery-hq/dataquery/pkg/distribution"
	"dataquery-hq/dataquery/pkg/history"
	"dataquery-hq/dataquery/pkg/telemetry/metrics"
	"dataquery-hq/dataquery/pkg/theory"
)

// Handlers bundles the API handlers and their dependencies. History,
// theories, scheduler and metrics may be nil when the matching feature
// is disabled; the handlers then answer 503 for those routes.
type Handlers struct {
	Catalog    *catalog.Store
	Datasource *datasource.Datasource
	History    *history.Store
	Theories   *theory.Store
	Scheduler  *distribution.Scheduler
	Metrics    *metrics.Collector
	Config     *config.Config

	// settings holds the mutable dashboard preferences; the zero value
	// serves defaults.
	settings settingsStore
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
