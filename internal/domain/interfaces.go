package domain

import (
	"context"

	"slotbook/internal/models"
)

// Repository объединяет операции над единым хранилищем.
// Счетчик available_slots меняется только через ReserveSlots, ReleaseSlots
// и пересчет в UpdateSession — других путей записи быть не должно.
type Repository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	GetSessions(ctx context.Context) ([]models.Session, error)
	UpdateSession(ctx context.Context, session *models.Session) error

	ReserveSlots(ctx context.Context, sessionID int64, count int64) error
	ReleaseSlots(ctx context.Context, sessionID int64, count int64) error

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByToken(ctx context.Context, token string) (*models.Booking, error)
	GetBookings(ctx context.Context) ([]models.Booking, error)
	GetBookingsBySession(ctx context.Context, sessionID int64) ([]models.Booking, error)
	UpdateBookingPartySize(ctx context.Context, id int64, partySize int64) error
	UpdateBookingByToken(ctx context.Context, token string, update models.BookingUpdate) error
	DeleteBooking(ctx context.Context, id int64) error

	GetSettings(ctx context.Context) ([]models.Setting, error)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	CreateAdmin(ctx context.Context, username, passwordHash string) error
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// SettingsCache хранит снимок публичных настроек. Промах — (nil, nil).
type SettingsCache interface {
	GetAll(ctx context.Context) (map[string]string, error)
	SetAll(ctx context.Context, values map[string]string) error
	Invalidate(ctx context.Context) error
}
