package models

import "time"

// DateFormat is the canonical YYYY-MM-DD key used for calendar dates
// throughout the store and the snapshot.
const DateFormat = "2006-01-02"

const (
	StatusClosed = "closed"
	StatusOpen   = "open"
	StatusBooked = "booked"
)

type CalendarDay struct {
	Date      string    `json:"date"`
	Status    string    `json:"status"` // closed, open, booked
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DayInfo is one merged entry of a month snapshot: the day status plus the
// booking occupying it, if any.
type DayInfo struct {
	Status  string   `json:"status"`
	Booking *Booking `json:"booking,omitempty"`
}

// MonthSnapshot maps YYYY-MM-DD to the merged day view for one displayed
// month. Dates with no calendar row have no entry and are treated as
// unavailable by consumers.
type MonthSnapshot map[string]DayInfo

// CalendarStats aggregates day counts per status over the whole calendar.
type CalendarStats struct {
	Open   int `json:"open"`
	Booked int `json:"booked"`
	Closed int `json:"closed"`
}

// MonthRange returns the inclusive [first, last] day keys of a month.
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateFormat), last.Format(DateFormat)
}
