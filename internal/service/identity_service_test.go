package service

import (
	"context"
	"testing"
	"time"

	"cabinbook/internal/models"
	"cabinbook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityService(t *testing.T) {
	db, _ := setupStore(t)
	logger := zerolog.Nop()
	repo := repository.NewMemoryIdentityRepository(time.Hour)
	svc := NewIdentityService(db, repo, &logger)
	ctx := context.Background()

	require.NoError(t, db.UpsertAdmin(ctx, "Noa", "0541112233"))

	t.Run("ResolveAdmin", func(t *testing.T) {
		identity, err := svc.Resolve(ctx, "", "054-1112233")
		require.NoError(t, err)
		assert.True(t, identity.IsAdmin())
	})

	t.Run("ResolveGuestByPhone", func(t *testing.T) {
		identity, err := svc.Resolve(ctx, "", "0501234567")
		require.NoError(t, err)
		assert.False(t, identity.IsAdmin())
		require.NotNil(t, identity.Guest)
		assert.Equal(t, "0501234567", identity.Guest.Phone)
	})

	t.Run("ResolveAnonymous", func(t *testing.T) {
		identity, err := svc.Resolve(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, models.RoleGuest, identity.Role)
		assert.Nil(t, identity.Guest)
	})

	t.Run("SaveAndResolveByDevice", func(t *testing.T) {
		err := svc.SaveGuest(ctx, "device-1", models.GuestRecord{
			Name:  "Dana Cohen",
			Phone: "050-1234567",
			Email: "dana@example.com",
		})
		require.NoError(t, err)

		identity, err := svc.Resolve(ctx, "device-1", "")
		require.NoError(t, err)
		require.NotNil(t, identity.Guest)
		assert.Equal(t, "Dana Cohen", identity.Guest.Name)
		assert.Equal(t, "0501234567", identity.Guest.Phone)
	})

	t.Run("SaveGuestValidation", func(t *testing.T) {
		err := svc.SaveGuest(ctx, "device-2", models.GuestRecord{Phone: "0501234567"})
		assert.ErrorIs(t, err, ErrNameRequired)

		err = svc.SaveGuest(ctx, "device-2", models.GuestRecord{Name: "A", Phone: "12345"})
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})

	t.Run("Logout", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, "device-1"))

		record, err := svc.LoadGuest(ctx, "device-1")
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}
