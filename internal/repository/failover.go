package repository

import (
	"context"
	"sync/atomic"
	"time"

	"slotbook/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSettingsCache ходит в Redis, а при его недоступности переключается
// на кэш в памяти. Повторная попытка к primary — не чаще раза в минуту.
type FailoverSettingsCache struct {
	primary   domain.SettingsCache
	fallback  domain.SettingsCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverSettingsCache(primary, fallback domain.SettingsCache, logger *zerolog.Logger) *FailoverSettingsCache {
	return &FailoverSettingsCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverSettingsCache) GetAll(ctx context.Context) (map[string]string, error) {
	if c.primaryAvailable() {
		values, err := c.primary.GetAll(ctx)
		if err == nil {
			c.isDown.Store(false)
			return values, nil
		}
		c.markDown(err)
	}
	return c.fallback.GetAll(ctx)
}

func (c *FailoverSettingsCache) SetAll(ctx context.Context, values map[string]string) error {
	if c.primaryAvailable() {
		if err := c.primary.SetAll(ctx, values); err != nil {
			c.markDown(err)
		} else {
			c.isDown.Store(false)
		}
	}
	return c.fallback.SetAll(ctx, values)
}

func (c *FailoverSettingsCache) Invalidate(ctx context.Context) error {
	if c.primaryAvailable() {
		if err := c.primary.Invalidate(ctx); err != nil {
			c.markDown(err)
		}
	}
	return c.fallback.Invalidate(ctx)
}

func (c *FailoverSettingsCache) primaryAvailable() bool {
	if !c.isDown.Load() {
		return true
	}
	// Пробуем восстановиться спустя минуту после падения
	return time.Since(time.Unix(c.lastCheck.Load(), 0)) > time.Minute
}

func (c *FailoverSettingsCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("primary settings cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().Unix())
}
