package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/metrics"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type BookingService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewBookingService(repo domain.Repository, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:   repo,
		logger: logger,
	}
}

// CreateBooking проводит заявку через полный цикл: решение о листе ожидания
// принимается один раз по снимку свободных мест, запись и резерв либо
// проходят вместе, либо заявка удаляется. Подтвержденной заявки без
// списанных мест остаться не должно.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := validateBooking(booking); err != nil {
		return err
	}

	session, err := s.repo.GetSession(ctx, booking.SessionID)
	if err != nil {
		return err
	}

	// Флаг листа ожидания фиксируется здесь и больше не пересчитывается
	booking.IsWaitlist = session.AvailableSlots < booking.PartySize

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return err
	}

	if !booking.IsWaitlist {
		if err := s.repo.ReserveSlots(ctx, booking.SessionID, booking.PartySize); err != nil {
			// Проиграли гонку за места: откатываем запись, чтобы не оставить
			// подтвержденную заявку без резерва
			if delErr := s.repo.DeleteBooking(ctx, booking.ID); delErr != nil {
				s.logger.Error().Err(delErr).Int64("booking_id", booking.ID).
					Msg("failed to roll back booking after reserve failure")
			}
			if errors.Is(err, database.ErrInsufficientSlots) {
				metrics.IncCapacityConflict()
			}
			return err
		}
	}

	outcome := "confirmed"
	if booking.IsWaitlist {
		outcome = "waitlist"
	}
	metrics.IncBookingCreated(outcome)

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("session_id", booking.SessionID).
		Int64("party_size", booking.PartySize).
		Bool("is_waitlist", booking.IsWaitlist).
		Msg("booking created")

	return nil
}

// UpdatePartySize меняет размер группы по админскому id. Рост требует
// успешного резерва разницы до записи; уменьшение возвращает разницу после.
func (s *BookingService) UpdatePartySize(ctx context.Context, id int64, partySize int64) (*models.Booking, error) {
	if err := validatePartySize(partySize); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyPartySizeChange(ctx, booking, partySize, func() error {
		return s.repo.UpdateBookingPartySize(ctx, id, partySize)
	}); err != nil {
		return nil, err
	}

	return s.repo.GetBooking(ctx, id)
}

// UpdateByToken применяет гостевую правку: любое подмножество полей,
// дельта мест считается только когда задан party_size.
func (s *BookingService) UpdateByToken(ctx context.Context, token string, update models.BookingUpdate) (*models.Booking, error) {
	if err := validateUpdate(update); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBookingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if update.PartySize != nil {
		if err := s.applyPartySizeChange(ctx, booking, *update.PartySize, func() error {
			return s.repo.UpdateBookingByToken(ctx, token, update)
		}); err != nil {
			return nil, err
		}
	} else if !update.Empty() {
		if err := s.repo.UpdateBookingByToken(ctx, token, update); err != nil {
			return nil, err
		}
	}

	return s.repo.GetBookingByToken(ctx, token)
}

// applyPartySizeChange выполняет запись нового размера с учетом дельты мест.
// Заявки из листа ожидания мест не резервировали, их правки счетчик не трогают.
func (s *BookingService) applyPartySizeChange(ctx context.Context, booking *models.Booking, newSize int64, commit func() error) error {
	difference := newSize - booking.PartySize
	if difference == 0 || booking.IsWaitlist {
		return commit()
	}

	if difference > 0 {
		if err := s.repo.ReserveSlots(ctx, booking.SessionID, difference); err != nil {
			if errors.Is(err, database.ErrInsufficientSlots) {
				metrics.IncCapacityConflict()
			}
			return err
		}
		if err := commit(); err != nil {
			// Запись не прошла — возвращаем только что списанные места
			if relErr := s.repo.ReleaseSlots(ctx, booking.SessionID, difference); relErr != nil {
				s.logger.Error().Err(relErr).Int64("booking_id", booking.ID).
					Msg("failed to return slots after aborted edit")
			}
			return err
		}
		return nil
	}

	if err := commit(); err != nil {
		return err
	}
	if err := s.repo.ReleaseSlots(ctx, booking.SessionID, -difference); err != nil {
		metrics.IncLedgerDrift()
		s.logger.Error().Err(err).
			Int64("booking_id", booking.ID).
			Int64("session_id", booking.SessionID).
			Msg("slot release failed after party size decrease")
		return err
	}
	return nil
}

// Delete удаляет заявку и возвращает места в счетчик. Заявки из листа
// ожидания мест не занимали, поэтому для них возврата нет.
func (s *BookingService) Delete(ctx context.Context, id int64) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	if !booking.IsWaitlist {
		if err := s.repo.ReleaseSlots(ctx, booking.SessionID, booking.PartySize); err != nil {
			metrics.IncLedgerDrift()
			s.logger.Error().Err(err).
				Int64("booking_id", id).
				Int64("session_id", booking.SessionID).
				Int64("party_size", booking.PartySize).
				Msg("slot release failed after booking deletion")
			return err
		}
	}

	s.logger.Info().Int64("booking_id", id).Bool("was_waitlist", booking.IsWaitlist).Msg("booking deleted")
	return nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetByToken(ctx context.Context, token string) (*models.Booking, error) {
	return s.repo.GetBookingByToken(ctx, token)
}

func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.repo.GetBookings(ctx)
}

func (s *BookingService) ListBySession(ctx context.Context, sessionID int64) ([]models.Booking, error) {
	return s.repo.GetBookingsBySession(ctx, sessionID)
}

func validateBooking(booking *models.Booking) error {
	if booking.SessionID == 0 {
		return fmt.Errorf("%w: session_id is required", ErrValidation)
	}
	if err := validateName(booking.Name); err != nil {
		return err
	}
	if err := validateEmail(booking.Email); err != nil {
		return err
	}
	if booking.Phone != "" {
		if err := validatePhone(booking.Phone); err != nil {
			return err
		}
	}
	return validatePartySize(booking.PartySize)
}

func validateUpdate(update models.BookingUpdate) error {
	if update.Name != nil {
		if err := validateName(*update.Name); err != nil {
			return err
		}
	}
	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return err
		}
	}
	if update.Phone != nil && *update.Phone != "" {
		if err := validatePhone(*update.Phone); err != nil {
			return err
		}
	}
	if update.PartySize != nil {
		return validatePartySize(*update.PartySize)
	}
	return nil
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) < models.MinNameLength {
		return fmt.Errorf("%w: name must be at least %d characters long", ErrValidation, models.MinNameLength)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}

func validatePhone(phone string) error {
	if len(strings.TrimSpace(phone)) < models.MinPhoneLength {
		return fmt.Errorf("%w: phone number must be at least %d characters long", ErrValidation, models.MinPhoneLength)
	}
	return nil
}

func validatePartySize(partySize int64) error {
	if partySize < models.MinPartySize {
		return fmt.Errorf("%w: party size must be at least %d", ErrValidation, models.MinPartySize)
	}
	if partySize > models.MaxPartySize {
		return fmt.Errorf("%w: party size cannot exceed %d people", ErrValidation, models.MaxPartySize)
	}
	return nil
}
