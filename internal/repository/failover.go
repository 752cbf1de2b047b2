package repository

import (
	"context"
	"sync/atomic"
	"time"

	"cabinbook/internal/domain"
	"cabinbook/internal/models"

	"github.com/rs/zerolog"
)

type FailoverIdentityRepository struct {
	primary   domain.IdentityRepository
	fallback  domain.IdentityRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverIdentityRepository(primary, fallback domain.IdentityRepository, logger *zerolog.Logger) *FailoverIdentityRepository {
	return &FailoverIdentityRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverIdentityRepository) GetIdentity(ctx context.Context, deviceID string) (*models.GuestRecord, error) {
	if !r.isDown.Load() {
		record, err := r.primary.GetIdentity(ctx, deviceID)
		if err == nil {
			return record, nil
		}
		r.logger.Error().Err(err).Msg("Primary identity repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		record, err := r.primary.GetIdentity(ctx, deviceID)
		if err == nil {
			r.isDown.Store(false)
			return record, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetIdentity(ctx, deviceID)
}

func (r *FailoverIdentityRepository) SetIdentity(ctx context.Context, deviceID string, record *models.GuestRecord) error {
	if !r.isDown.Load() {
		err := r.primary.SetIdentity(ctx, deviceID, record)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary identity repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetIdentity(ctx, deviceID, record)
}

func (r *FailoverIdentityRepository) ClearIdentity(ctx context.Context, deviceID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearIdentity(ctx, deviceID)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary identity repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.ClearIdentity(ctx, deviceID)
}

func (r *FailoverIdentityRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary identity repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
