package service

import (
	"context"
	"strings"

	"cabinbook/internal/domain"
	"cabinbook/internal/models"

	"github.com/rs/zerolog"
)

type IdentityService struct {
	store  domain.Store
	repo   domain.IdentityRepository
	logger *zerolog.Logger
}

func NewIdentityService(store domain.Store, repo domain.IdentityRepository, logger *zerolog.Logger) *IdentityService {
	return &IdentityService{
		store:  store,
		repo:   repo,
		logger: logger,
	}
}

// Resolve определяет роль по номеру телефона. Пустой номер дает гостя без записи.
func (s *IdentityService) Resolve(ctx context.Context, deviceID, phone string) (models.Identity, error) {
	if phone != "" {
		isAdmin, err := s.store.IsAdminPhone(ctx, phone)
		if err != nil {
			return models.Identity{}, err
		}
		if isAdmin {
			return models.Identity{Role: models.RoleAdmin}, nil
		}
	}

	identity := models.Identity{Role: models.RoleGuest}
	if deviceID != "" {
		record, err := s.repo.GetIdentity(ctx, deviceID)
		if err != nil {
			// Хранилище идентичности не критично для чтения календаря
			s.logger.Warn().Err(err).Msg("failed to load guest identity")
			return identity, nil
		}
		identity.Guest = record
	}

	if identity.Guest == nil && phone != "" {
		identity.Guest = &models.GuestRecord{Phone: models.NormalizePhone(phone)}
	}

	return identity, nil
}

func (s *IdentityService) SaveGuest(ctx context.Context, deviceID string, record models.GuestRecord) error {
	if strings.TrimSpace(record.Name) == "" {
		return ErrNameRequired
	}
	if !models.IsValidPhone(record.Phone) {
		return ErrInvalidPhone
	}
	if !models.IsValidEmail(record.Email) {
		return ErrInvalidEmail
	}

	record.Name = strings.TrimSpace(record.Name)
	record.Phone = models.NormalizePhone(record.Phone)
	return s.repo.SetIdentity(ctx, deviceID, &record)
}

func (s *IdentityService) Logout(ctx context.Context, deviceID string) error {
	return s.repo.ClearIdentity(ctx, deviceID)
}

func (s *IdentityService) LoadGuest(ctx context.Context, deviceID string) (*models.GuestRecord, error) {
	return s.repo.GetIdentity(ctx, deviceID)
}
