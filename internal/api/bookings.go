package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"slotbook/internal/metrics"
	"slotbook/internal/models"
)

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		// party_size defaults to 1 when the guest omits it
		booking := models.Booking{PartySize: 1}
		if err := decodeJSON(r, &booking); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := s.bookings.CreateBooking(r.Context(), &booking); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, booking)
	case http.MethodGet:
		if !s.requireAdmin(w, r) {
			return
		}

		var (
			bookings []models.Booking
			err      error
		)
		if raw := strings.TrimSpace(r.URL.Query().Get("session_id")); raw != "" {
			sessionID, parseErr := strconv.ParseInt(raw, 10, 64)
			if parseErr != nil || sessionID <= 0 {
				writeError(w, http.StatusBadRequest, "invalid session_id")
				return
			}
			bookings, err = s.bookings.ListBySession(r.Context(), sessionID)
		} else {
			bookings, err = s.bookings.List(r.Context())
		}
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDSuffix(w, r.URL.Path, "/api/bookings/")
	if !ok {
		return
	}

	if !s.requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, err := s.bookings.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodPut:
		var body struct {
			PartySize int64 `json:"party_size"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		booking, err := s.bookings.UpdatePartySize(r.Context(), id, body.PartySize)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodDelete:
		if err := s.bookings.Delete(r.Context(), id); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleBookingByToken обслуживает гостя по персональной ссылке: токен
// из письма подтверждения заменяет авторизацию.
func (s *HTTPServer) handleBookingByToken(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/bookings/token/"
	token := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if token == "" || strings.Contains(token, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, err := s.bookings.GetByToken(r.Context(), token)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	case http.MethodPut:
		var update models.BookingUpdate
		if err := decodeJSON(r, &update); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		booking, err := s.bookings.UpdateByToken(r.Context(), token, update)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	path, err := s.exporter.ExportBookings(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	file, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	metrics.IncExport()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), file)
}
