package api

import (
	"net/http"
	"strconv"
	"strings"

	"slotbook/internal/models"
)

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.sessions.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}

		var session models.Session
		if err := decodeJSON(r, &session); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := s.sessions.Create(r.Context(), &session); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDSuffix(w, r.URL.Path, "/api/sessions/")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		session, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}

		var session models.Session
		if err := decodeJSON(r, &session); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		session.ID = id

		if err := s.sessions.Update(r.Context(), &session); err != nil {
			respondError(w, err)
			return
		}

		updated, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// parseIDSuffix извлекает числовой id из хвоста пути. При ошибке ответ
// уже записан.
func parseIDSuffix(w http.ResponseWriter, path, prefix string) (int64, bool) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
