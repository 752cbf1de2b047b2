package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cabinbook/internal/domain"
	"cabinbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type GuestbookService struct {
	store     domain.Store
	rateLimit domain.IdentityRepository
	limit     int
	window    time.Duration
	logger    *zerolog.Logger
}

func NewGuestbookService(store domain.Store, rateLimit domain.IdentityRepository, limit int, window time.Duration, logger *zerolog.Logger) *GuestbookService {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Hour
	}
	return &GuestbookService{
		store:     store,
		rateLimit: rateLimit,
		limit:     limit,
		window:    window,
		logger:    logger,
	}
}

func (s *GuestbookService) Add(ctx context.Context, name, phone, message string) (*models.GuestbookEntry, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if !models.IsValidPhone(phone) {
		return nil, ErrInvalidPhone
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrMessageRequired
	}

	normalized := models.NormalizePhone(phone)
	if s.rateLimit != nil {
		key := fmt.Sprintf("guestbook:%s", normalized)
		allowed, err := s.rateLimit.CheckRateLimit(ctx, key, s.limit, s.window)
		if err != nil {
			s.logger.Warn().Err(err).Msg("guestbook rate limit check failed")
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	entry := &models.GuestbookEntry{
		ID:         uuid.NewString(),
		GuestName:  strings.TrimSpace(name),
		GuestPhone: normalized,
		Message:    strings.TrimSpace(message),
	}

	if err := s.store.AddGuestbookEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *GuestbookService) List(ctx context.Context, limit int) ([]models.GuestbookEntry, error) {
	return s.store.ListGuestbookEntries(ctx, limit)
}

// Delete разрешен автору записи и администраторам.
func (s *GuestbookService) Delete(ctx context.Context, id string, identity models.Identity) error {
	entry, err := s.store.GetGuestbookEntry(ctx, id)
	if err != nil {
		return err
	}

	if !identity.IsAdmin() && !identity.Owns(entry.GuestPhone) {
		return ErrForbidden
	}

	return s.store.DeleteGuestbookEntry(ctx, id)
}
