package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/export"
	"slotbook/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the public booking API and the admin endpoints.
type HTTPServer struct {
	cfg      config.ServerConfig
	server   *http.Server
	logger   *zerolog.Logger
	limiter  *rateLimiter
	sessions *service.SessionService
	bookings *service.BookingService
	settings *service.SettingsService
	auth     *service.AuthService
	exporter *export.Exporter
}

func NewHTTPServer(
	cfg config.ServerConfig,
	sessions *service.SessionService,
	bookings *service.BookingService,
	settings *service.SettingsService,
	auth *service.AuthService,
	exporter *export.Exporter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		logger:   logger,
		limiter:  newRateLimiter(cfg.RateLimit),
		sessions: sessions,
		bookings: bookings,
		settings: settings,
		auth:     auth,
		exporter: exporter,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", srv.handleSessions)
	mux.HandleFunc("/api/sessions/", srv.handleSessionByID)
	mux.HandleFunc("/api/bookings", srv.handleBookings)
	mux.HandleFunc("/api/bookings/export", srv.handleExport)
	mux.HandleFunc("/api/bookings/token/", srv.handleBookingByToken)
	mux.HandleFunc("/api/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/settings", srv.handleSettings)
	mux.HandleFunc("/api/settings/", srv.handleSettingByKey)
	mux.HandleFunc("/api/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/health", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.rateLimitMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

// Handler возвращает корневой обработчик, в тестах используется без Start.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// respondError переводит ошибки сервисов в HTTP статусы.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, database.ErrSessionNotFound),
		errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrSettingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInsufficientSlots):
		writeError(w, http.StatusConflict, "not enough available slots")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
