package worker

import (
	"context"
	"time"

	"cabinbook/internal/database"

	"github.com/rs/zerolog"
)

// Reconciler periodically heals drift between the calendar and bookings
// tables: booked days without a booking row and bookings whose day lost
// its booked status.
type Reconciler struct {
	db       *database.DB
	interval time.Duration
	retry    RetryPolicy
	logger   *zerolog.Logger
}

func NewReconciler(db *database.DB, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = time.Hour
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &Reconciler{
		db:       db,
		interval: interval,
		retry:    retry,
		logger:   logger,
	}
}

// Start launches the loop; stops when ctx is done.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info().Dur("interval", r.interval).Msg("reconciler started")
	defer r.logger.Info().Msg("reconciler stopped")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runWithRetries(ctx)
		}
	}
}

func (r *Reconciler) runWithRetries(ctx context.Context) {
	for attempt := 1; attempt <= r.retry.MaxRetries; attempt++ {
		repaired, err := r.RunOnce(ctx)
		if err == nil {
			if repaired > 0 {
				r.logger.Warn().Int("repaired", repaired).Msg("calendar drift repaired")
			}
			return
		}

		r.logger.Error().Err(err).Int("attempt", attempt).Msg("reconcile pass failed")
		if attempt == r.retry.MaxRetries {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retry.NextDelay(attempt)):
		}
	}
}

// RunOnce выполняет один проход сверки и возвращает число исправлений.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	report, err := r.db.FindMismatches(ctx)
	if err != nil {
		return 0, err
	}
	if report.Empty() {
		return 0, nil
	}

	return r.db.RepairMismatches(ctx, report)
}
