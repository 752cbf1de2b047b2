package service

import (
	"context"
	"sync"
	"time"

	"cabinbook/internal/domain"
	"cabinbook/internal/events"
	"cabinbook/internal/metrics"
	"cabinbook/internal/models"

	"github.com/rs/zerolog"
)

// LiveSnapshot держит снапшот текущего месяца и перестраивает его
// при каждом изменении таблиц calendar и bookings.
type LiveSnapshot struct {
	calendar domain.CalendarService
	bus      domain.ChangeBus
	timeout  time.Duration
	logger   *zerolog.Logger

	mu       sync.RWMutex
	year     int
	month    time.Month
	snapshot models.MonthSnapshot
	subs     []*events.Subscription
}

func NewLiveSnapshot(calendar domain.CalendarService, bus domain.ChangeBus, timeout time.Duration, logger *zerolog.Logger) *LiveSnapshot {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LiveSnapshot{
		calendar: calendar,
		bus:      bus,
		timeout:  timeout,
		logger:   logger,
	}
}

// SetMonth переключает отслеживаемый месяц. Старые подписки снимаются
// до оформления новых, чтобы не перестраивать чужой месяц.
func (l *LiveSnapshot) SetMonth(ctx context.Context, year int, month time.Month) error {
	l.mu.Lock()
	first := l.snapshot == nil
	old := l.subs
	l.subs = nil
	l.year = year
	l.month = month
	l.mu.Unlock()

	for _, sub := range old {
		l.bus.Unsubscribe(sub)
	}

	subs := []*events.Subscription{
		l.bus.Subscribe(events.TableCalendar, l.handleChange),
		l.bus.Subscribe(events.TableBookings, l.handleChange),
	}

	l.mu.Lock()
	l.subs = subs
	l.mu.Unlock()

	trigger := "month_change"
	if first {
		trigger = "initial"
	}
	return l.rebuild(ctx, year, month, trigger)
}

func (l *LiveSnapshot) handleChange(ev events.ChangeEvent) {
	l.mu.RLock()
	year, month := l.year, l.month
	l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	if err := l.rebuild(ctx, year, month, "live_change"); err != nil {
		l.logger.Error().Err(err).
			Str("table", ev.Table).
			Str("op", ev.Op).
			Msg("live snapshot rebuild failed")
	}
}

func (l *LiveSnapshot) rebuild(ctx context.Context, year int, month time.Month, trigger string) error {
	snapshot, err := l.calendar.BuildMonthSnapshot(ctx, year, month)
	if err != nil {
		return err
	}

	l.mu.Lock()
	// Месяц мог переключиться, пока шла выборка
	if l.year == year && l.month == month {
		l.snapshot = snapshot
	}
	l.mu.Unlock()

	metrics.IncSnapshotRebuild(trigger)
	return nil
}

// Snapshot возвращает копию текущего снапшота.
func (l *LiveSnapshot) Snapshot() (int, time.Month, models.MonthSnapshot) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(models.MonthSnapshot, len(l.snapshot))
	for k, v := range l.snapshot {
		out[k] = v
	}
	return l.year, l.month, out
}

// Close снимает подписки. Снапшот остается доступным для чтения.
func (l *LiveSnapshot) Close() {
	l.mu.Lock()
	subs := l.subs
	l.subs = nil
	l.mu.Unlock()

	for _, sub := range subs {
		l.bus.Unsubscribe(sub)
	}
}
