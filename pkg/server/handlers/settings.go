package handlers

import (
	"net/http"
	"sync"
)

// Settings are the mutable dashboard preferences. They live in memory
// only and reset to defaults on restart.
type Settings struct {
	DefaultRowsPerPage int    `json:"default_rows_per_page"`
	DateFormat         string `json:"date_format"`
	Timezone           string `json:"timezone"`
	Theme              string `json:"theme"`
}

// DefaultSettings returns the preferences served before any update.
func DefaultSettings() Settings {
	return Settings{
		DefaultRowsPerPage: 25,
		DateFormat:         "dd.MM.yyyy",
		Timezone:           "Europe/Moscow",
		Theme:              "light",
	}
}

// settingsStore guards the current settings. The zero value serves
// DefaultSettings until the first update.
type settingsStore struct {
	mu      sync.RWMutex
	current Settings
	set     bool
}

func (s *settingsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return DefaultSettings()
	}
	return s.current
}

func (s *settingsStore) Put(v Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = v
	s.set = true
}

// GetSettings handles GET /settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Get())
}

// UpdateSettings handles PUT /settings: replaces the preferences
// wholesale and echoes the stored value.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s Settings
	if err := decodeJSON(r, &s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if s.DefaultRowsPerPage <= 0 {
		writeError(w, http.StatusBadRequest, "default_rows_per_page must be positive")
		return
	}

	h.settings.Put(s)
	writeJSON(w, http.StatusOK, s)
}
