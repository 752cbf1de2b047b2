package service

import (
	"context"
	"testing"
	"time"

	"cabinbook/internal/database"
	"cabinbook/internal/domain"
	"cabinbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(t *testing.T) (*BookingService, *database.DB) {
	t.Helper()
	db, _ := setupStore(t)
	logger := zerolog.Nop()
	return NewBookingService(db, 3650, &logger), db
}

func TestBookingServiceCreate(t *testing.T) {
	svc, db := newBookingService(t)
	ctx := context.Background()

	openDays(t, db, "2030-06-10", "2030-06-11")

	t.Run("Success", func(t *testing.T) {
		booking, err := svc.Create(ctx, domain.CreateBookingRequest{
			Date:       "2030-06-10",
			GuestName:  "  Dana Cohen  ",
			GuestPhone: "050-1234567",
			GuestEmail: "dana@example.com",
		})
		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, "Dana Cohen", booking.GuestName)
		assert.Equal(t, "0501234567", booking.GuestPhone)

		days, err := db.GetCalendarRange(ctx, "2030-06-10", "2030-06-10")
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, models.StatusBooked, days[0].Status)
	})

	t.Run("DayAlreadyBooked", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateBookingRequest{
			Date:       "2030-06-10",
			GuestName:  "Yossi",
			GuestPhone: "0529998877",
		})
		assert.ErrorIs(t, err, database.ErrDayAlreadyBooked)
	})

	t.Run("DayNotOpen", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateBookingRequest{
			Date:       "2030-06-20",
			GuestName:  "Yossi",
			GuestPhone: "0529998877",
		})
		assert.ErrorIs(t, err, database.ErrDayNotOpen)
	})

	t.Run("PastDate", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateBookingRequest{
			Date:       "2020-01-01",
			GuestName:  "Yossi",
			GuestPhone: "0529998877",
		})
		assert.ErrorIs(t, err, database.ErrPastDate)
	})

	t.Run("TooFarAhead", func(t *testing.T) {
		logger := zerolog.Nop()
		short := NewBookingService(db, 30, &logger)
		_, err := short.Create(ctx, domain.CreateBookingRequest{
			Date:       "2030-06-11",
			GuestName:  "Yossi",
			GuestPhone: "0529998877",
		})
		assert.ErrorIs(t, err, database.ErrDateTooFar)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		cases := []struct {
			name string
			req  domain.CreateBookingRequest
			want error
		}{
			{"BadDate", domain.CreateBookingRequest{Date: "10/06/2030", GuestName: "A", GuestPhone: "0501234567"}, ErrInvalidDate},
			{"EmptyName", domain.CreateBookingRequest{Date: "2030-06-11", GuestName: "  ", GuestPhone: "0501234567"}, ErrNameRequired},
			{"BadPhone", domain.CreateBookingRequest{Date: "2030-06-11", GuestName: "A", GuestPhone: "12345"}, ErrInvalidPhone},
			{"BadEmail", domain.CreateBookingRequest{Date: "2030-06-11", GuestName: "A", GuestPhone: "0501234567", GuestEmail: "not-an-email"}, ErrInvalidEmail},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, tc.req)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestBookingServiceUpdate(t *testing.T) {
	svc, db := newBookingService(t)
	ctx := context.Background()

	openDays(t, db, "2030-07-01")
	booking, err := svc.Create(ctx, domain.CreateBookingRequest{
		Date:       "2030-07-01",
		GuestName:  "Dana",
		GuestPhone: "0501234567",
	})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		err := svc.Update(ctx, booking.ID, domain.UpdateBookingRequest{
			GuestName:  "Dana Levi",
			GuestPhone: "+972501234567",
			GuestEmail: "dana@example.com",
		})
		require.NoError(t, err)

		got, err := svc.Get(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana Levi", got.GuestName)
		assert.Equal(t, "0501234567", got.GuestPhone)
		assert.Equal(t, "2030-07-01", got.Date)
	})

	t.Run("NotFound", func(t *testing.T) {
		err := svc.Update(ctx, "missing-id", domain.UpdateBookingRequest{
			GuestName:  "X",
			GuestPhone: "0501234567",
		})
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
	})

	t.Run("InvalidPhone", func(t *testing.T) {
		err := svc.Update(ctx, booking.ID, domain.UpdateBookingRequest{
			GuestName:  "X",
			GuestPhone: "12345",
		})
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})
}

func TestBookingServiceCancel(t *testing.T) {
	svc, db := newBookingService(t)
	ctx := context.Background()

	openDays(t, db, "2030-08-01")
	booking, err := svc.Create(ctx, domain.CreateBookingRequest{
		Date:       "2030-08-01",
		GuestName:  "Dana",
		GuestPhone: "0501234567",
	})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		removed, err := svc.Cancel(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, "2030-08-01", removed.Date)

		days, err := db.GetCalendarRange(ctx, "2030-08-01", "2030-08-01")
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, models.StatusOpen, days[0].Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.Cancel(ctx, booking.ID)
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
	})
}

func TestValidateBookingDate_LocalDayBoundary(t *testing.T) {
	svc, _ := newBookingService(t)

	// Граница "сегодня" считается по локальному календарному дню,
	// независимо от смещения зоны относительно UTC.
	now := time.Now()
	today := now.Format(models.DateFormat)
	yesterday := now.AddDate(0, 0, -1).Format(models.DateFormat)
	tomorrow := now.AddDate(0, 0, 1).Format(models.DateFormat)

	assert.NoError(t, svc.ValidateBookingDate(today))
	assert.NoError(t, svc.ValidateBookingDate(tomorrow))
	assert.ErrorIs(t, svc.ValidateBookingDate(yesterday), database.ErrPastDate)
}
