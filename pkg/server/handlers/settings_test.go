package handlers

import (
	"net/http"
	"testing"
)

func TestGetSettingsDefaults(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.GetSettings, http.MethodGet, "/settings", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["default_rows_per_page"].(float64) != 25 {
		t.Errorf("default_rows_per_page = %v, want 25", body["default_rows_per_page"])
	}
	if body["theme"] != "light" {
		t.Errorf("theme = %v, want light", body["theme"])
	}
}

func TestUpdateSettings(t *testing.T) {
	h := newTestHandlers(t)

	update := map[string]any{
		"default_rows_per_page": 50,
		"date_format":           "yyyy-MM-dd",
		"timezone":              "UTC",
		"theme":                 "dark",
	}
	rec := doRequest(t, h.UpdateSettings, http.MethodPut, "/settings", update, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h.GetSettings, http.MethodGet, "/settings", nil, nil)
	body := decodeBody(t, rec)
	if body["default_rows_per_page"].(float64) != 50 {
		t.Errorf("default_rows_per_page = %v, want 50", body["default_rows_per_page"])
	}
	if body["theme"] != "dark" {
		t.Errorf("theme = %v, want dark", body["theme"])
	}
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	h := newTestHandlers(t)

	rec := doRequest(t, h.UpdateSettings, http.MethodPut, "/settings",
		map[string]any{"default_rows_per_page": 0}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	// A rejected update must not clobber the stored settings.
	rec = doRequest(t, h.GetSettings, http.MethodGet, "/settings", nil, nil)
	body := decodeBody(t, rec)
	if body["default_rows_per_page"].(float64) != 25 {
		t.Errorf("default_rows_per_page = %v, want 25 after rejected update", body["default_rows_per_page"])
	}
}
