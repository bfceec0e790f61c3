package service

import (
	"context"
	"fmt"

	"slotbook/internal/domain"

	"github.com/rs/zerolog"
)

// SettingsService отдает текстовые настройки публичной страницы с
// кэшированием: промах идет в БД и наполняет кэш, запись его сбрасывает.
type SettingsService struct {
	repo   domain.Repository
	cache  domain.SettingsCache
	logger *zerolog.Logger
}

func NewSettingsService(repo domain.Repository, cache domain.SettingsCache, logger *zerolog.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *SettingsService) GetAll(ctx context.Context) (map[string]string, error) {
	if s.cache != nil {
		if values, err := s.cache.GetAll(ctx); err == nil && values != nil {
			return values, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Msg("settings cache read failed")
		}
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}

	if s.cache != nil {
		if err := s.cache.SetAll(ctx, values); err != nil {
			s.logger.Warn().Err(err).Msg("settings cache write failed")
		}
	}

	return values, nil
}

func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrValidation)
	}

	if err := s.repo.SetSetting(ctx, key, value); err != nil {
		return err
	}

	s.invalidate(ctx)
	s.logger.Info().Str("key", key).Msg("setting updated")
	return nil
}

func (s *SettingsService) Delete(ctx context.Context, key string) error {
	if err := s.repo.DeleteSetting(ctx, key); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("settings cache invalidation failed")
	}
}
