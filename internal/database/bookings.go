package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cabinbook/internal/events"
	"cabinbook/internal/models"
)

const bookingColumns = `id, date, guest_name, guest_phone, guest_email, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.Booking, error) {
	var booking models.Booking
	var email sql.NullString
	err := row.Scan(
		&booking.ID,
		&booking.Date,
		&booking.GuestName,
		&booking.GuestPhone,
		&email,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.GuestEmail = email.String
	return &booking, nil
}

// GetBookingsRange returns all bookings with date between from and to
// inclusive, ordered by date.
func (db *DB) GetBookingsRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE date BETWEEN ? AND ? ORDER BY date`, bookingColumns)

	rows, err := db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings range: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings range: %w", err)
	}

	return bookings, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = ?`, bookingColumns)

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// CreateBooking inserts the booking and flips its day to booked in one
// transaction, so the status/booking pairing cannot be left half-applied.
// The uniqueness constraint on bookings.date is checked first and reported
// as ErrDayAlreadyBooked: in a race between two clients it is the
// authoritative tie-break. The day must exist and not be closed; the
// caller's snapshot is advisory only.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	insert := `INSERT INTO bookings (id, date, guest_name, guest_phone, guest_email, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insert,
		booking.ID,
		booking.Date,
		booking.GuestName,
		booking.GuestPhone,
		nullable(booking.GuestEmail),
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDayAlreadyBooked
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM calendar WHERE date = ?`, booking.Date).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDayNotOpen
	}
	if err != nil {
		return fmt.Errorf("failed to check day status: %w", err)
	}
	if status == models.StatusClosed {
		return ErrDayNotOpen
	}

	_, err = tx.ExecContext(ctx, `UPDATE calendar SET status = ?, updated_at = ? WHERE date = ?`,
		models.StatusBooked, now, booking.Date)
	if err != nil {
		return fmt.Errorf("failed to mark day booked: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now

	db.publish(events.TableBookings, events.OpInsert)
	db.publish(events.TableCalendar, events.OpUpdate)
	return nil
}

// UpdateBookingGuest rewrites guest fields only; date and day status are
// never touched here.
func (db *DB) UpdateBookingGuest(ctx context.Context, id, name, phone, email string) error {
	query := `UPDATE bookings SET guest_name = ?, guest_phone = ?, guest_email = ?, updated_at = ? WHERE id = ?`

	result, err := db.ExecContext(ctx, query, name, phone, nullable(email), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	db.publish(events.TableBookings, events.OpUpdate)
	return nil
}

// CancelBooking deletes the booking and reverts its day to open in one
// transaction. The day is taken from the stored row, not from the caller.
// Returns the removed booking.
func (db *DB) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = ?`, bookingColumns)
	booking, err := scanBooking(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE calendar SET status = ?, updated_at = ? WHERE date = ?`,
		models.StatusOpen, time.Now(), booking.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen day: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	db.publish(events.TableBookings, events.OpDelete)
	db.publish(events.TableCalendar, events.OpUpdate)
	return booking, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
