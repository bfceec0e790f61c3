package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/models"
)

func (db *DB) CreateSession(ctx context.Context, session *models.Session) error {
	query := `INSERT INTO sessions (name, start_time, end_time, total_slots, available_slots, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	// available_slots при создании всегда равен total_slots
	result, err := db.ExecContext(ctx, query,
		session.Name,
		session.StartTime,
		session.EndTime,
		session.TotalSlots,
		session.TotalSlots,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	session.ID = id
	session.AvailableSlots = session.TotalSlots
	session.CreatedAt = now

	return nil
}

func (db *DB) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	query := `SELECT id, name, start_time, end_time, total_slots, available_slots, created_at
              FROM sessions WHERE id = ?`

	var session models.Session
	err := db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.Name,
		&session.StartTime,
		&session.EndTime,
		&session.TotalSlots,
		&session.AvailableSlots,
		&session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

func (db *DB) GetSessions(ctx context.Context) ([]models.Session, error) {
	query := `SELECT id, name, start_time, end_time, total_slots, available_slots, created_at
              FROM sessions ORDER BY start_time ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		err := rows.Scan(
			&session.ID,
			&session.Name,
			&session.StartTime,
			&session.EndTime,
			&session.TotalSlots,
			&session.AvailableSlots,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateSession обновляет сессию и пересчитывает available_slots по дельте
// вместимости: new_available = max(0, old_available + (new_total - old_total)).
// Пересчет выполняется в транзакции, чтобы не потерять параллельные изменения счетчика.
func (db *DB) UpdateSession(ctx context.Context, session *models.Session) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var oldTotal, oldAvailable int64
	err = tx.QueryRowContext(ctx, `SELECT total_slots, available_slots FROM sessions WHERE id = ?`, session.ID).
		Scan(&oldTotal, &oldAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read session in tx: %w", err)
	}

	newAvailable := oldAvailable + (session.TotalSlots - oldTotal)
	if newAvailable < 0 {
		newAvailable = 0
	}

	query := `UPDATE sessions SET name = ?, start_time = ?, end_time = ?, total_slots = ?, available_slots = ?
              WHERE id = ?`
	_, err = tx.ExecContext(ctx, query,
		session.Name,
		session.StartTime,
		session.EndTime,
		session.TotalSlots,
		newAvailable,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	session.AvailableSlots = newAvailable
	return tx.Commit()
}

// ReserveSlots атомарно списывает count мест, только если их достаточно.
// Проверка и запись выполняются одним условным UPDATE, чтобы два
// одновременных бронирования не увидели одни и те же свободные места.
func (db *DB) ReserveSlots(ctx context.Context, sessionID int64, count int64) error {
	if count <= 0 {
		return fmt.Errorf("reserve count must be positive, got %d", count)
	}

	query := `UPDATE sessions
              SET available_slots = available_slots - ?
              WHERE id = ? AND available_slots >= ?`

	result, err := db.ExecContext(ctx, query, count, sessionID, count)
	if err != nil {
		return fmt.Errorf("failed to reserve slots: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrInsufficientSlots
	}
	return nil
}

// ReleaseSlots атомарно возвращает count мест, только если счетчик не
// превысит total_slots. Срабатывание защиты означает расхождение учета.
func (db *DB) ReleaseSlots(ctx context.Context, sessionID int64, count int64) error {
	if count <= 0 {
		return fmt.Errorf("release count must be positive, got %d", count)
	}

	query := `UPDATE sessions
              SET available_slots = available_slots + ?
              WHERE id = ? AND available_slots + ? <= total_slots`

	result, err := db.ExecContext(ctx, query, count, sessionID, count)
	if err != nil {
		return fmt.Errorf("failed to release slots: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		db.logger.Error().
			Int64("session_id", sessionID).
			Int64("count", count).
			Msg("slot release rejected: ledger would exceed total capacity")
		return ErrSlotOverflow
	}
	return nil
}
