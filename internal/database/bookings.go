package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotbook/internal/models"

	"github.com/google/uuid"
)

// CreateBooking сохраняет заявку и выдает ей токен гостевого доступа.
// Токен — случайный uuid v4: он служит предъявительским ключом и не должен
// выводиться из id, почты или времени создания. Флаг is_waitlist пишется
// как передан — ledger здесь не трогается.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (session_id, name, email, phone, party_size, is_waitlist, token, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	token := uuid.NewString()
	now := time.Now()

	var phone any
	if booking.Phone != "" {
		phone = booking.Phone
	}

	result, err := db.ExecContext(ctx, query,
		booking.SessionID,
		booking.Name,
		booking.Email,
		phone,
		booking.PartySize,
		booking.IsWaitlist,
		token,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.Token = token
	booking.CreatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT id, session_id, name, email, phone, party_size, is_waitlist, token, created_at
              FROM bookings WHERE id = ?`

	booking, err := db.scanBooking(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetBookingByToken возвращает заявку вместе с данными сессии для страницы
// гостя. available_slots здесь только для отображения, не для решений о
// вместимости.
func (db *DB) GetBookingByToken(ctx context.Context, token string) (*models.Booking, error) {
	query := `SELECT b.id, b.session_id, b.name, b.email, b.phone, b.party_size, b.is_waitlist, b.token, b.created_at,
                     s.name, s.start_time, s.end_time, s.available_slots
              FROM bookings b
              JOIN sessions s ON b.session_id = s.id
              WHERE b.token = ?`

	var booking models.Booking
	var phone sql.NullString
	var sessionStart, sessionEnd time.Time
	var sessionAvailable int64
	err := db.QueryRowContext(ctx, query, token).Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.Name,
		&booking.Email,
		&phone,
		&booking.PartySize,
		&booking.IsWaitlist,
		&booking.Token,
		&booking.CreatedAt,
		&booking.SessionName,
		&sessionStart,
		&sessionEnd,
		&sessionAvailable,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by token: %w", err)
	}

	booking.Phone = phone.String
	booking.SessionStart = &sessionStart
	booking.SessionEnd = &sessionEnd
	booking.SessionAvailable = &sessionAvailable
	return &booking, nil
}

// GetBookings возвращает все заявки, новые сверху, с именем и началом сессии
// для списка в админке.
func (db *DB) GetBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT b.id, b.session_id, b.name, b.email, b.phone, b.party_size, b.is_waitlist, b.token, b.created_at,
                     s.name, s.start_time
              FROM bookings b
              JOIN sessions s ON b.session_id = s.id
              ORDER BY b.created_at DESC, b.id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		var phone sql.NullString
		var sessionStart time.Time
		err := rows.Scan(
			&booking.ID,
			&booking.SessionID,
			&booking.Name,
			&booking.Email,
			&phone,
			&booking.PartySize,
			&booking.IsWaitlist,
			&booking.Token,
			&booking.CreatedAt,
			&booking.SessionName,
			&sessionStart,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		booking.Phone = phone.String
		booking.SessionStart = &sessionStart
		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (db *DB) GetBookingsBySession(ctx context.Context, sessionID int64) ([]models.Booking, error) {
	query := `SELECT id, session_id, name, email, phone, party_size, is_waitlist, token, created_at
              FROM bookings WHERE session_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		var phone sql.NullString
		err := rows.Scan(
			&booking.ID,
			&booking.SessionID,
			&booking.Name,
			&booking.Email,
			&phone,
			&booking.PartySize,
			&booking.IsWaitlist,
			&booking.Token,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		booking.Phone = phone.String
		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (db *DB) UpdateBookingPartySize(ctx context.Context, id int64, partySize int64) error {
	result, err := db.ExecContext(ctx, `UPDATE bookings SET party_size = ? WHERE id = ?`, partySize, id)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// UpdateBookingByToken применяет частичное обновление: меняются только
// заданные поля.
func (db *DB) UpdateBookingByToken(ctx context.Context, token string, update models.BookingUpdate) error {
	var fields []string
	var values []any

	if update.Name != nil {
		fields = append(fields, "name = ?")
		values = append(values, *update.Name)
	}
	if update.Email != nil {
		fields = append(fields, "email = ?")
		values = append(values, *update.Email)
	}
	if update.Phone != nil {
		fields = append(fields, "phone = ?")
		values = append(values, *update.Phone)
	}
	if update.PartySize != nil {
		fields = append(fields, "party_size = ?")
		values = append(values, *update.PartySize)
	}

	if len(fields) == 0 {
		return nil
	}

	values = append(values, token)
	query := fmt.Sprintf(`UPDATE bookings SET %s WHERE token = ?`, strings.Join(fields, ", "))

	result, err := db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to update booking by token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) scanBooking(row *sql.Row) (*models.Booking, error) {
	var booking models.Booking
	var phone sql.NullString
	err := row.Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.Name,
		&booking.Email,
		&phone,
		&booking.PartySize,
		&booking.IsWaitlist,
		&booking.Token,
		&booking.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	booking.Phone = phone.String
	return &booking, nil
}
