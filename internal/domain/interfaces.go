package domain

import (
	"context"
	"time"

	"cabinbook/internal/database"
	"cabinbook/internal/events"
	"cabinbook/internal/models"
)

// Store is the date-range store client over the calendar, bookings,
// guestbook and admins tables.
type Store interface {
	GetCalendarRange(ctx context.Context, from, to string) ([]models.CalendarDay, error)
	OpenDays(ctx context.Context, dates []string) (int, error)
	CloseDays(ctx context.Context, dates []string) (int, int, error)
	SetDayStatus(ctx context.Context, date, status string) error
	CountDayStatuses(ctx context.Context) (*models.CalendarStats, error)

	GetBookingsRange(ctx context.Context, from, to string) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingGuest(ctx context.Context, id, name, phone, email string) error
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)

	AddGuestbookEntry(ctx context.Context, entry *models.GuestbookEntry) error
	ListGuestbookEntries(ctx context.Context, limit int) ([]models.GuestbookEntry, error)
	GetGuestbookEntry(ctx context.Context, id string) (*models.GuestbookEntry, error)
	DeleteGuestbookEntry(ctx context.Context, id string) error

	IsAdminPhone(ctx context.Context, phone string) (bool, error)

	FindMismatches(ctx context.Context) (*database.MismatchReport, error)
	RepairMismatches(ctx context.Context, report *database.MismatchReport) (int, error)
}

// IdentityRepository persists guest identity records keyed by device ID.
type IdentityRepository interface {
	GetIdentity(ctx context.Context, deviceID string) (*models.GuestRecord, error)
	SetIdentity(ctx context.Context, deviceID string, record *models.GuestRecord) error
	ClearIdentity(ctx context.Context, deviceID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ChangeBus is the subscription side of the change feed.
type ChangeBus interface {
	Subscribe(table string, handler events.Handler) *events.Subscription
	Unsubscribe(sub *events.Subscription)
}

type CalendarService interface {
	BuildMonthSnapshot(ctx context.Context, year int, month time.Month) (models.MonthSnapshot, error)
	OpenDays(ctx context.Context, dates []string) (int, error)
	CloseDays(ctx context.Context, dates []string) (int, int, error)
	Stats(ctx context.Context) (*models.CalendarStats, error)
}

type BookingService interface {
	Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error)
	Update(ctx context.Context, id string, req UpdateBookingRequest) error
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
}

type GuestbookService interface {
	Add(ctx context.Context, name, phone, message string) (*models.GuestbookEntry, error)
	List(ctx context.Context, limit int) ([]models.GuestbookEntry, error)
	Delete(ctx context.Context, id string, identity models.Identity) error
}

type IdentityService interface {
	Resolve(ctx context.Context, deviceID, phone string) (models.Identity, error)
	SaveGuest(ctx context.Context, deviceID string, record models.GuestRecord) error
	Logout(ctx context.Context, deviceID string) error
	LoadGuest(ctx context.Context, deviceID string) (*models.GuestRecord, error)
}

type CreateBookingRequest struct {
	Date       string
	GuestName  string
	GuestPhone string
	GuestEmail string
}

type UpdateBookingRequest struct {
	GuestName  string
	GuestPhone string
	GuestEmail string
}
