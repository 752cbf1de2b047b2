package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDayAlreadyBooked is the Conflict case: the bookings.date uniqueness
	// constraint rejected a second booking for the same day. It is the only
	// authoritative guard against a double-booking race and must stay
	// distinguishable from generic failures.
	ErrDayAlreadyBooked = errors.New("day already booked")

	// ErrDayNotOpen rejects a booking attempt against a day that is closed,
	// absent from the calendar, or otherwise not open.
	ErrDayNotOpen = errors.New("day is not open for booking")

	ErrPastDate = errors.New("date is in the past")

	ErrDateTooFar = errors.New("date is too far ahead")

	ErrBookingNotFound = errors.New("booking not found")

	ErrEntryNotFound = errors.New("guestbook entry not found")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
