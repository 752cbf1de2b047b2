package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cabinbook/internal/events"
	"cabinbook/internal/models"
)

// GetCalendarRange returns all calendar rows with date between from and to
// inclusive, ordered by date. Dates are YYYY-MM-DD strings.
func (db *DB) GetCalendarRange(ctx context.Context, from, to string) ([]models.CalendarDay, error) {
	query := `SELECT date, status, created_at, updated_at FROM calendar
              WHERE date BETWEEN ? AND ? ORDER BY date`

	rows, err := db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar range: %w", err)
	}
	defer rows.Close()

	var days []models.CalendarDay
	for rows.Next() {
		var day models.CalendarDay
		if err := rows.Scan(&day.Date, &day.Status, &day.CreatedAt, &day.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calendar day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read calendar range: %w", err)
	}

	return days, nil
}

// OpenDays upserts status=open for every date in the set, regardless of the
// current status. The whole batch is one transaction: either every row is
// written or none are. Returns the number of rows written.
func (db *DB) OpenDays(ctx context.Context, dates []string) (int, error) {
	if len(dates) == 0 {
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
	for _, date := range dates {
		if _, err := tx.ExecContext(ctx, upsertStatusQuery, date, models.StatusOpen, now, now); err != nil {
			return 0, fmt.Errorf("failed to open day %s: %w", date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit open days: %w", err)
	}

	db.publish(events.TableCalendar, events.OpUpdate)
	return len(dates), nil
}

const upsertStatusQuery = `INSERT INTO calendar (date, status, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(date) DO UPDATE SET
            status = excluded.status,
            updated_at = excluded.updated_at`

// CloseDays upserts status=closed for the dates in the set that are not
// currently booked; booked dates are skipped, never force-closed. The
// partition is taken from the store inside the same transaction as the
// write, so a booking committed after the caller's snapshot cannot be
// stranded. Returns (closed, skipped).
func (db *DB) CloseDays(ctx context.Context, dates []string) (int, int, error) {
	if len(dates) == 0 {
		return 0, 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	placeholders := strings.Repeat("?,", len(dates))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT date FROM calendar WHERE status = ? AND date IN (%s)`, placeholders)

	args := make([]interface{}, 0, len(dates)+1)
	args = append(args, models.StatusBooked)
	for _, d := range dates {
		args = append(args, d)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to check booked days: %w", err)
	}

	booked := make(map[string]bool)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("failed to scan booked day: %w", err)
		}
		booked[date] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, 0, fmt.Errorf("failed to read booked days: %w", err)
	}
	rows.Close()

	now := time.Now()
	closed := 0
	for _, date := range dates {
		if booked[date] {
			continue
		}
		if _, err := tx.ExecContext(ctx, upsertStatusQuery, date, models.StatusClosed, now, now); err != nil {
			return 0, 0, fmt.Errorf("failed to close day %s: %w", date, err)
		}
		closed++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit close days: %w", err)
	}

	if closed > 0 {
		db.publish(events.TableCalendar, events.OpUpdate)
	}
	return closed, len(dates) - closed, nil
}

// SetDayStatus upserts a single day's status. Used by the reconciler.
func (db *DB) SetDayStatus(ctx context.Context, date, status string) error {
	now := time.Now()
	if _, err := db.ExecContext(ctx, upsertStatusQuery, date, status, now, now); err != nil {
		return fmt.Errorf("failed to set day status: %w", err)
	}
	db.publish(events.TableCalendar, events.OpUpdate)
	return nil
}

// CountDayStatuses aggregates day counts per status over the whole table.
func (db *DB) CountDayStatuses(ctx context.Context) (*models.CalendarStats, error) {
	query := `SELECT status, COUNT(*) FROM calendar GROUP BY status`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count day statuses: %w", err)
	}
	defer rows.Close()

	var stats models.CalendarStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		switch status {
		case models.StatusOpen:
			stats.Open = count
		case models.StatusBooked:
			stats.Booked = count
		case models.StatusClosed:
			stats.Closed = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status counts: %w", err)
	}

	return &stats, nil
}
