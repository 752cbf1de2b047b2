package service

import (
	"context"
	"fmt"
	"time"

	"cabinbook/internal/domain"
	"cabinbook/internal/metrics"
	"cabinbook/internal/models"

	"github.com/rs/zerolog"
)

type CalendarService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewCalendarService(store domain.Store, logger *zerolog.Logger) *CalendarService {
	return &CalendarService{
		store:  store,
		logger: logger,
	}
}

// BuildMonthSnapshot собирает карту дней месяца из двух диапазонных выборок.
// Дни без строки в календаре в снапшот не попадают.
func (s *CalendarService) BuildMonthSnapshot(ctx context.Context, year int, month time.Month) (models.MonthSnapshot, error) {
	from, to := models.MonthRange(year, month)

	days, err := s.store.GetCalendarRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar range: %w", err)
	}

	bookings, err := s.store.GetBookingsRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings range: %w", err)
	}

	byDate := make(map[string]*models.Booking, len(bookings))
	for i := range bookings {
		byDate[bookings[i].Date] = &bookings[i]
	}

	snapshot := make(models.MonthSnapshot, len(days))
	for _, day := range days {
		info := models.DayInfo{Status: day.Status}
		if day.Status == models.StatusBooked {
			info.Booking = byDate[day.Date]
		}
		snapshot[day.Date] = info
	}

	return snapshot, nil
}

func (s *CalendarService) OpenDays(ctx context.Context, dates []string) (int, error) {
	opened, err := s.store.OpenDays(ctx, dates)
	if err != nil {
		return 0, err
	}
	metrics.AddBulkTransitions("open", opened)
	s.logger.Info().Int("opened", opened).Msg("bulk open applied")
	return opened, nil
}

func (s *CalendarService) CloseDays(ctx context.Context, dates []string) (int, int, error) {
	closed, skipped, err := s.store.CloseDays(ctx, dates)
	if err != nil {
		return 0, 0, err
	}
	metrics.AddBulkTransitions("close", closed)
	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Msg("booked days skipped by bulk close")
	}
	return closed, skipped, nil
}

func (s *CalendarService) Stats(ctx context.Context) (*models.CalendarStats, error) {
	return s.store.CountDayStatuses(ctx)
}
