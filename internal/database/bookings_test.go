package database

import (
	"context"
	"testing"
	"time"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingGeneratesToken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	session := createTestSession(t, db, "Hunt", 10)

	first := &models.Booking{SessionID: session.ID, Name: "Alice", Email: "alice@example.com", PartySize: 2}
	second := &models.Booking{SessionID: session.ID, Name: "Bob", Email: "bob@example.com", PartySize: 1}
	require.NoError(t, db.CreateBooking(ctx, first))
	require.NoError(t, db.CreateBooking(ctx, second))

	assert.NotEmpty(t, first.Token)
	assert.NotEmpty(t, second.Token)
	assert.NotEqual(t, first.Token, second.Token)
	assert.NotZero(t, first.ID)
}

func TestGetBookingByToken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	session := createTestSession(t, db, "Hunt", 10)
	booking := &models.Booking{SessionID: session.ID, Name: "Alice", Email: "alice@example.com", Phone: "+33612345678", PartySize: 3}
	require.NoError(t, db.CreateBooking(ctx, booking))

	got, err := db.GetBookingByToken(ctx, booking.Token)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "+33612345678", got.Phone)
	assert.Equal(t, "Hunt", got.SessionName)
	require.NotNil(t, got.SessionAvailable)
	assert.Equal(t, int64(10), *got.SessionAvailable)

	_, err = db.GetBookingByToken(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetBookingsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	session := createTestSession(t, db, "Hunt", 10)
	for _, name := range []string{"First", "Second", "Third"} {
		b := &models.Booking{SessionID: session.ID, Name: name, Email: name + "@example.com", PartySize: 1}
		require.NoError(t, db.CreateBooking(ctx, b))
	}

	bookings, err := db.GetBookings(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.Equal(t, "Third", bookings[0].Name)
	assert.Equal(t, "First", bookings[2].Name)
	assert.Equal(t, "Hunt", bookings[0].SessionName)
	require.NotNil(t, bookings[0].SessionStart)
}

func TestUpdateBookingPartySize(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	session := createTestSession(t, db, "Hunt", 10)
	booking := &models.Booking{SessionID: session.ID, Name: "Alice", Email: "alice@example.com", PartySize: 2}
	require.NoError(t, db.CreateBooking(ctx, booking))

	require.NoError(t, db.UpdateBookingPartySize(ctx, booking.ID, 4))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.PartySize)

	assert.ErrorIs(t, db.UpdateBookingPartySize(ctx, 999, 2), ErrBookingNotFound)
}

func TestUpdateBookingByTokenPartial(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	session := createTestSession(t, db, "Hunt", 10)
	booking := &models.Booking{SessionID: session.ID, Name: "Alice", Email: "alice@example.com", PartySize: 2}
	require.NoError(t, db.CreateBooking(ctx, booking))

	newName := "Alice B."
	newPhone := "+33712345678"
	update := models.BookingUpdate{Name: &newName, Phone: &newPhone}
	require.NoError(t, db.UpdateBookingByToken(ctx, booking.Token, update))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.Name)
	assert.Equal(t, "+33712345678", got.Phone)
	// Незаданные поля не трогаются
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, int64(2), got.PartySize)

	assert.ErrorIs(t, db.UpdateBookingByToken(ctx, "bad-token", update), ErrBookingNotFound)
}

func TestDeleteBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	session := createTestSession(t, db, "Hunt", 10)
	booking := &models.Booking{SessionID: session.ID, Name: "Alice", Email: "alice@example.com", PartySize: 2}
	require.NoError(t, db.CreateBooking(ctx, booking))

	require.NoError(t, db.DeleteBooking(ctx, booking.ID))

	_, err := db.GetBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.ErrorIs(t, db.DeleteBooking(ctx, booking.ID), ErrBookingNotFound)
}

func TestGetBookingsBySession(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := createTestSession(t, db, "Morning", 10)
	second := createTestSession(t, db, "Evening", 10)

	require.NoError(t, db.CreateBooking(ctx, &models.Booking{SessionID: first.ID, Name: "A", Email: "a@example.com", PartySize: 1}))
	require.NoError(t, db.CreateBooking(ctx, &models.Booking{SessionID: second.ID, Name: "B", Email: "b@example.com", PartySize: 1}))

	bookings, err := db.GetBookingsBySession(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "A", bookings[0].Name)
}

func TestSettingsStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SetSetting(ctx, "event_date", "12 Octobre"))

	value, err := db.GetSetting(ctx, "event_date")
	require.NoError(t, err)
	assert.Equal(t, "12 Octobre", value)

	// Upsert перезаписывает значение
	require.NoError(t, db.SetSetting(ctx, "event_date", "19 Octobre"))
	value, err = db.GetSetting(ctx, "event_date")
	require.NoError(t, err)
	assert.Equal(t, "19 Octobre", value)

	_, err = db.GetSetting(ctx, "missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)

	require.NoError(t, db.SeedDefaultSettings(ctx, map[string]string{
		"event_date": "should not overwrite",
		"invites_fr": "Bienvenue",
	}))
	value, err = db.GetSetting(ctx, "event_date")
	require.NoError(t, err)
	assert.Equal(t, "19 Octobre", value)
	value, err = db.GetSetting(ctx, "invites_fr")
	require.NoError(t, err)
	assert.Equal(t, "Bienvenue", value)
}

func TestAdminsStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAdmin(ctx, "organizer", "hash"))

	admin, err := db.GetAdminByUsername(ctx, "organizer")
	require.NoError(t, err)
	assert.Equal(t, "organizer", admin.Username)
	assert.Equal(t, "hash", admin.PasswordHash)
	assert.WithinDuration(t, time.Now(), admin.CreatedAt, time.Minute)

	_, err = db.GetAdminByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrAdminNotFound)
}
