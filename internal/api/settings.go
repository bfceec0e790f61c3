package api

import (
	"net/http"
	"strings"
)

func (s *HTTPServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	values, err := s.settings.GetAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": values})
}

func (s *HTTPServer) handleSettingByKey(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/settings/"
	key := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if key == "" || strings.Contains(key, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		value, err := s.settings.Get(r.Context(), key)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}

		var body struct {
			Value string `json:"value"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := s.settings.Set(r.Context(), key, body.Value); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": body.Value})
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}

		if err := s.settings.Delete(r.Context(), key); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
