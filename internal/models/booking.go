package models

import "time"

type Booking struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"` // YYYY-MM-DD, unique among bookings
	GuestName  string    `json:"guest_name"`
	GuestPhone string    `json:"guest_phone"`
	GuestEmail string    `json:"guest_email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type GuestbookEntry struct {
	ID         string    `json:"id"`
	GuestName  string    `json:"guest_name"`
	GuestPhone string    `json:"guest_phone"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
