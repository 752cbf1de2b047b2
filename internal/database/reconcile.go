package database

import (
	"context"
	"fmt"
	"time"

	"cabinbook/internal/events"
	"cabinbook/internal/models"
)

// MismatchReport lists dates where calendar status and booking existence
// disagree. StaleBooked days are marked booked with no booking row;
// UnmarkedBookings have a booking row but a day that is not marked booked
// (or no day at all).
type MismatchReport struct {
	StaleBooked      []string
	UnmarkedBookings []string
}

func (r *MismatchReport) Empty() bool {
	return len(r.StaleBooked) == 0 && len(r.UnmarkedBookings) == 0
}

// FindMismatches scans the whole calendar/bookings pair for violations of
// the "booked iff a booking exists" invariant. Mismatches can only be
// induced externally (manual edits, other writers); the store's own
// lifecycle transitions are transactional.
func (db *DB) FindMismatches(ctx context.Context) (*MismatchReport, error) {
	report := &MismatchReport{}

	staleQuery := `SELECT c.date FROM calendar c
                   LEFT JOIN bookings b ON b.date = c.date
                   WHERE c.status = ? AND b.id IS NULL`
	rows, err := db.QueryContext(ctx, staleQuery, models.StatusBooked)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale booked days: %w", err)
	}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan stale booked day: %w", err)
		}
		report.StaleBooked = append(report.StaleBooked, date)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read stale booked days: %w", err)
	}
	rows.Close()

	unmarkedQuery := `SELECT b.date FROM bookings b
                      LEFT JOIN calendar c ON c.date = b.date
                      WHERE c.date IS NULL OR c.status != ?`
	rows, err = db.QueryContext(ctx, unmarkedQuery, models.StatusBooked)
	if err != nil {
		return nil, fmt.Errorf("failed to find unmarked bookings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan unmarked booking: %w", err)
		}
		report.UnmarkedBookings = append(report.UnmarkedBookings, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unmarked bookings: %w", err)
	}

	return report, nil
}

// RepairMismatches restores the invariant for the given report in one
// transaction: stale booked days revert to open, days holding a booking
// are marked booked. Returns the number of repaired days.
func (db *DB) RepairMismatches(ctx context.Context, report *MismatchReport) (int, error) {
	if report == nil || report.Empty() {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	repaired := 0

	for _, date := range report.StaleBooked {
		if _, err := tx.ExecContext(ctx, upsertStatusQuery, date, models.StatusOpen, now, now); err != nil {
			return 0, fmt.Errorf("failed to reopen stale booked day %s: %w", date, err)
		}
		repaired++
	}
	for _, date := range report.UnmarkedBookings {
		if _, err := tx.ExecContext(ctx, upsertStatusQuery, date, models.StatusBooked, now, now); err != nil {
			return 0, fmt.Errorf("failed to mark booked day %s: %w", date, err)
		}
		repaired++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit repairs: %w", err)
	}

	db.publish(events.TableCalendar, events.OpUpdate)
	return repaired, nil
}
