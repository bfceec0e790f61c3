package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/export"
	"slotbook/internal/models"
	"slotbook/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *database.DB) {
	t.Helper()

	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adminCfg := config.AdminConfig{
		Username:     "admin",
		Password:     "sesame",
		JWTSecret:    "test-secret",
		TokenTTLMins: 60,
	}

	sessions := service.NewSessionService(db, &logger)
	bookings := service.NewBookingService(db, &logger)
	settings := service.NewSettingsService(db, nil, &logger)
	auth := service.NewAuthService(db, adminCfg, &logger)
	require.NoError(t, auth.EnsureAdmin(context.Background()))

	exporter := export.NewExporter(db, config.ExportConfig{Path: t.TempDir()}, &logger)

	server := NewHTTPServer(config.ServerConfig{Port: 0}, sessions, bookings, settings, auth, exporter, &logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func adminToken(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "sesame",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func createSessionViaAPI(t *testing.T, ts *httptest.Server, token string, totalSlots int64) models.Session {
	t.Helper()

	start := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	resp := doJSON(t, ts, http.MethodPost, "/api/sessions", token, map[string]any{
		"name":        "Soirée d'été",
		"start_time":  start,
		"end_time":    start.Add(3 * time.Hour),
		"total_slots": totalSlots,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	token := adminToken(t, ts)

	session := createSessionViaAPI(t, ts, token, 20)
	assert.Equal(t, int64(20), session.AvailableSlots)

	resp, err := http.Get(ts.URL + "/api/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Sessions []models.Session `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Sessions, 1)

	// Расширение вместимости добавляет дельту к свободным местам
	update := doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/sessions/%d", session.ID), token, map[string]any{
		"name":        session.Name,
		"start_time":  session.StartTime,
		"end_time":    session.EndTime,
		"total_slots": 30,
	})
	defer update.Body.Close()
	require.Equal(t, http.StatusOK, update.StatusCode)

	var updated models.Session
	require.NoError(t, json.NewDecoder(update.Body).Decode(&updated))
	assert.Equal(t, int64(30), updated.TotalSlots)
	assert.Equal(t, int64(30), updated.AvailableSlots)
}

func TestSessionCreateRequiresAdmin(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/sessions", "", map[string]any{"name": "x"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	forged := doJSON(t, ts, http.MethodPost, "/api/sessions", "not-a-jwt", map[string]any{"name": "x"})
	defer forged.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, forged.StatusCode)
}

func TestBookingFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	token := adminToken(t, ts)
	session := createSessionViaAPI(t, ts, token, 5)

	resp := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": session.ID,
		"name":       "Alice Martin",
		"email":      "alice@example.com",
		"party_size": 3,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var booking models.Booking
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&booking))
	assert.False(t, booking.IsWaitlist)
	assert.NotEmpty(t, booking.Token)

	// Осталось 2 свободных, запрос на 3 уходит в лист ожидания
	waitResp := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": session.ID,
		"name":       "Bob Durand",
		"email":      "bob@example.com",
		"party_size": 3,
	})
	defer waitResp.Body.Close()
	require.Equal(t, http.StatusCreated, waitResp.StatusCode)

	var waitlisted models.Booking
	require.NoError(t, json.NewDecoder(waitResp.Body).Decode(&waitlisted))
	assert.True(t, waitlisted.IsWaitlist)

	sessionResp, err := http.Get(fmt.Sprintf("%s/api/sessions/%d", ts.URL, session.ID))
	require.NoError(t, err)
	defer sessionResp.Body.Close()

	var current models.Session
	require.NoError(t, json.NewDecoder(sessionResp.Body).Decode(&current))
	assert.Equal(t, int64(2), current.AvailableSlots)
}

func TestBookingDefaultsPartySize(t *testing.T) {
	ts, _ := newTestServer(t)
	token := adminToken(t, ts)
	session := createSessionViaAPI(t, ts, token, 5)

	// Тело без party_size трактуется как бронирование на одного
	resp := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": session.ID,
		"name":       "Claire Dubois",
		"email":      "claire@example.com",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var booking models.Booking
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&booking))
	assert.Equal(t, int64(1), booking.PartySize)
	assert.False(t, booking.IsWaitlist)

	sessionResp, err := http.Get(fmt.Sprintf("%s/api/sessions/%d", ts.URL, session.ID))
	require.NoError(t, err)
	defer sessionResp.Body.Close()

	var current models.Session
	require.NoError(t, json.NewDecoder(sessionResp.Body).Decode(&current))
	assert.Equal(t, int64(4), current.AvailableSlots)
}

func TestBookingValidationError(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": 1,
		"name":       "Alice",
		"email":      "not-an-email",
		"party_size": 2,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingUnknownSession(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": 42,
		"name":       "Alice Martin",
		"email":      "alice@example.com",
		"party_size": 2,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookingTokenRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)
	token := adminToken(t, ts)
	session := createSessionViaAPI(t, ts, token, 10)

	created := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": session.ID,
		"name":       "Alice Martin",
		"email":      "alice@example.com",
		"party_size": 2,
	})
	defer created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	var booking models.Booking
	require.NoError(t, json.NewDecoder(created.Body).Decode(&booking))

	getResp, err := http.Get(ts.URL + "/api/bookings/token/" + booking.Token)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var fetched models.Booking
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&fetched))
	assert.Equal(t, "Soirée d'été", fetched.SessionName)

	putResp := doJSON(t, ts, http.MethodPut, "/api/bookings/token/"+booking.Token, "", map[string]any{
		"party_size": 4,
	})
	defer putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	var edited models.Booking
	require.NoError(t, json.NewDecoder(putResp.Body).Decode(&edited))
	assert.Equal(t, int64(4), edited.PartySize)

	sessionResp, err := http.Get(fmt.Sprintf("%s/api/sessions/%d", ts.URL, session.ID))
	require.NoError(t, err)
	defer sessionResp.Body.Close()

	var current models.Session
	require.NoError(t, json.NewDecoder(sessionResp.Body).Decode(&current))
	assert.Equal(t, int64(6), current.AvailableSlots)
}

func TestBookingTokenEditConflict(t *testing.T) {
	ts, _ := newTestServer(t)
	token := adminToken(t, ts)
	session := createSessionViaAPI(t, ts, token, 3)

	created := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": session.ID,
		"name":       "Alice Martin",
		"email":      "alice@example.com",
		"party_size": 2,
	})
	defer created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	var booking models.Booking
	require.NoError(t, json.NewDecoder(created.Body).Decode(&booking))

	// Осталось 1 свободное место, рост на 2 невозможен
	putResp := doJSON(t, ts, http.MethodPut, "/api/bookings/token/"+booking.Token, "", map[string]any{
		"party_size": 4,
	})
	defer putResp.Body.Close()
	assert.Equal(t, http.StatusConflict, putResp.StatusCode)

	getResp, err := http.Get(ts.URL + "/api/bookings/token/" + booking.Token)
	require.NoError(t, err)
	defer getResp.Body.Close()

	var unchanged models.Booking
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&unchanged))
	assert.Equal(t, int64(2), unchanged.PartySize)
}

func TestBookingAdminDelete(t *testing.T) {
	ts, _ := newTestServer(t)
	token := adminToken(t, ts)
	session := createSessionViaAPI(t, ts, token, 5)

	created := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": session.ID,
		"name":       "Alice Martin",
		"email":      "alice@example.com",
		"party_size": 3,
	})
	defer created.Body.Close()

	var booking models.Booking
	require.NoError(t, json.NewDecoder(created.Body).Decode(&booking))

	delResp := doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/bookings/%d", booking.ID), token, nil)
	defer delResp.Body.Close()
	require.Equal(t, http.StatusOK, delResp.StatusCode)

	sessionResp, err := http.Get(fmt.Sprintf("%s/api/sessions/%d", ts.URL, session.ID))
	require.NoError(t, err)
	defer sessionResp.Body.Close()

	var current models.Session
	require.NoError(t, json.NewDecoder(sessionResp.Body).Decode(&current))
	assert.Equal(t, int64(5), current.AvailableSlots)

	missing := doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/bookings/%d", booking.ID), token, nil)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestBookingListRequiresAdmin(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/bookings")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	ts, db := newTestServer(t)
	require.NoError(t, db.SeedDefaultSettings(context.Background(), models.DefaultSettings))
	token := adminToken(t, ts)

	resp, err := http.Get(ts.URL + "/api/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Settings map[string]string `json:"settings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Settings)

	putResp := doJSON(t, ts, http.MethodPut, "/api/settings/event_title", token, map[string]string{
		"value": "Nouvelle Fête",
	})
	defer putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	getResp, err := http.Get(ts.URL + "/api/settings/event_title")
	require.NoError(t, err)
	defer getResp.Body.Close()

	var setting struct {
		Value string `json:"value"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&setting))
	assert.Equal(t, "Nouvelle Fête", setting.Value)

	denied := doJSON(t, ts, http.MethodPut, "/api/settings/event_title", "", map[string]string{"value": "x"})
	defer denied.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, denied.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	token := adminToken(t, ts)
	session := createSessionViaAPI(t, ts, token, 10)

	created := doJSON(t, ts, http.MethodPost, "/api/bookings", "", map[string]any{
		"session_id": session.ID,
		"name":       "Alice Martin",
		"email":      "alice@example.com",
		"party_size": 2,
	})
	created.Body.Close()

	resp := doJSON(t, ts, http.MethodGet, "/api/bookings/export", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
