package service

import (
	"context"
	"strings"
	"time"

	"cabinbook/internal/database"
	"cabinbook/internal/domain"
	"cabinbook/internal/metrics"
	"cabinbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	store          domain.Store
	maxAdvanceDays int
	logger         *zerolog.Logger
}

func NewBookingService(store domain.Store, maxAdvanceDays int, logger *zerolog.Logger) *BookingService {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = 365
	}
	return &BookingService{
		store:          store,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

func (s *BookingService) ValidateBookingDate(date string) error {
	parsed, err := time.Parse(models.DateFormat, date)
	if err != nil {
		return ErrInvalidDate
	}

	// Сравниваем по календарному дню в локальной зоне, а не по моменту времени
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.Before(today) {
		return database.ErrPastDate
	}

	maxDate := today.AddDate(0, 0, s.maxAdvanceDays)
	if parsed.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

func validateGuest(name, phone, email string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if !models.IsValidPhone(phone) {
		return ErrInvalidPhone
	}
	if !models.IsValidEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}

func (s *BookingService) Create(ctx context.Context, req domain.CreateBookingRequest) (*models.Booking, error) {
	if err := s.ValidateBookingDate(req.Date); err != nil {
		metrics.IncBookingOp("create", "invalid")
		return nil, err
	}
	if err := validateGuest(req.GuestName, req.GuestPhone, req.GuestEmail); err != nil {
		metrics.IncBookingOp("create", "invalid")
		return nil, err
	}

	booking := &models.Booking{
		ID:         uuid.NewString(),
		Date:       req.Date,
		GuestName:  strings.TrimSpace(req.GuestName),
		GuestPhone: models.NormalizePhone(req.GuestPhone),
		GuestEmail: strings.TrimSpace(req.GuestEmail),
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		result := "error"
		if err == database.ErrDayAlreadyBooked {
			result = "conflict"
		} else if err == database.ErrDayNotOpen {
			result = "not_open"
		}
		metrics.IncBookingOp("create", result)
		return nil, err
	}

	metrics.IncBookingOp("create", "ok")
	s.logger.Info().Str("booking_id", booking.ID).Str("date", booking.Date).Msg("booking created")
	return booking, nil
}

func (s *BookingService) Update(ctx context.Context, id string, req domain.UpdateBookingRequest) error {
	if err := validateGuest(req.GuestName, req.GuestPhone, req.GuestEmail); err != nil {
		metrics.IncBookingOp("update", "invalid")
		return err
	}

	err := s.store.UpdateBookingGuest(ctx, id,
		strings.TrimSpace(req.GuestName),
		models.NormalizePhone(req.GuestPhone),
		strings.TrimSpace(req.GuestEmail))
	if err != nil {
		metrics.IncBookingOp("update", "error")
		return err
	}

	metrics.IncBookingOp("update", "ok")
	return nil
}

func (s *BookingService) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.store.CancelBooking(ctx, id)
	if err != nil {
		metrics.IncBookingOp("cancel", "error")
		return nil, err
	}

	metrics.IncBookingOp("cancel", "ok")
	s.logger.Info().Str("booking_id", id).Str("date", booking.Date).Msg("booking cancelled")
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}
