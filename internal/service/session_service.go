package service

import (
	"context"
	"fmt"

	"slotbook/internal/domain"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

type SessionService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewSessionService(repo domain.Repository, logger *zerolog.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		logger: logger,
	}
}

func (s *SessionService) Create(ctx context.Context, session *models.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return err
	}

	s.logger.Info().
		Int64("session_id", session.ID).
		Str("name", session.Name).
		Int64("total_slots", session.TotalSlots).
		Msg("session created")
	return nil
}

// Update обновляет сессию; свободные места пересчитываются в хранилище по
// дельте вместимости. Заявки из листа ожидания при этом не подтверждаются.
func (s *SessionService) Update(ctx context.Context, session *models.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return err
	}

	s.logger.Info().
		Int64("session_id", session.ID).
		Int64("total_slots", session.TotalSlots).
		Int64("available_slots", session.AvailableSlots).
		Msg("session updated")
	return nil
}

func (s *SessionService) Get(ctx context.Context, id int64) (*models.Session, error) {
	return s.repo.GetSession(ctx, id)
}

func (s *SessionService) List(ctx context.Context) ([]models.Session, error) {
	return s.repo.GetSessions(ctx)
}

func validateSession(session *models.Session) error {
	if session.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if session.StartTime.IsZero() || session.EndTime.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", ErrValidation)
	}
	if !session.EndTime.After(session.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	if session.TotalSlots <= 0 {
		return fmt.Errorf("%w: total_slots must be a positive number", ErrValidation)
	}
	return nil
}
