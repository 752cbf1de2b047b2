package service

import (
	"context"
	"testing"
	"time"

	"cabinbook/internal/database"
	"cabinbook/internal/models"
	"cabinbook/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuestbookService(t *testing.T, limit int) *GuestbookService {
	t.Helper()
	db, _ := setupStore(t)
	logger := zerolog.Nop()
	repo := repository.NewMemoryIdentityRepository(time.Hour)
	return NewGuestbookService(db, repo, limit, time.Hour, &logger)
}

func TestGuestbookServiceAdd(t *testing.T) {
	svc := newGuestbookService(t, 5)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		entry, err := svc.Add(ctx, " Dana ", "050-1234567", " loved the view ")
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "Dana", entry.GuestName)
		assert.Equal(t, "0501234567", entry.GuestPhone)
		assert.Equal(t, "loved the view", entry.Message)
	})

	t.Run("Validation", func(t *testing.T) {
		_, err := svc.Add(ctx, "", "0501234567", "hi")
		assert.ErrorIs(t, err, ErrNameRequired)

		_, err = svc.Add(ctx, "Dana", "12345", "hi")
		assert.ErrorIs(t, err, ErrInvalidPhone)

		_, err = svc.Add(ctx, "Dana", "0501234567", "   ")
		assert.ErrorIs(t, err, ErrMessageRequired)
	})

	t.Run("RateLimited", func(t *testing.T) {
		tight := newGuestbookService(t, 2)
		_, err := tight.Add(ctx, "Dana", "0541112233", "one")
		require.NoError(t, err)
		_, err = tight.Add(ctx, "Dana", "0541112233", "two")
		require.NoError(t, err)
		_, err = tight.Add(ctx, "Dana", "0541112233", "three")
		assert.ErrorIs(t, err, ErrRateLimited)

		// Другой телефон не упирается в тот же лимит
		_, err = tight.Add(ctx, "Yossi", "0529998877", "hi")
		assert.NoError(t, err)
	})
}

func TestGuestbookServiceList(t *testing.T) {
	svc := newGuestbookService(t, 10)
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		_, err := svc.Add(ctx, "Dana", "0501234567", msg)
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGuestbookServiceDelete(t *testing.T) {
	svc := newGuestbookService(t, 10)
	ctx := context.Background()

	entry, err := svc.Add(ctx, "Dana", "0501234567", "hello")
	require.NoError(t, err)

	t.Run("StrangerForbidden", func(t *testing.T) {
		stranger := models.Identity{
			Role:  models.RoleGuest,
			Guest: &models.GuestRecord{Phone: "0529998877"},
		}
		err := svc.Delete(ctx, entry.ID, stranger)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("AnonymousForbidden", func(t *testing.T) {
		err := svc.Delete(ctx, entry.ID, models.Identity{Role: models.RoleGuest})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("AuthorAllowed", func(t *testing.T) {
		author := models.Identity{
			Role:  models.RoleGuest,
			Guest: &models.GuestRecord{Phone: "+972501234567"},
		}
		err := svc.Delete(ctx, entry.ID, author)
		require.NoError(t, err)
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		other, err := svc.Add(ctx, "Yossi", "0529998877", "bye")
		require.NoError(t, err)

		admin := models.Identity{Role: models.RoleAdmin}
		err = svc.Delete(ctx, other.ID, admin)
		require.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		err := svc.Delete(ctx, "missing", models.Identity{Role: models.RoleAdmin})
		assert.ErrorIs(t, err, database.ErrEntryNotFound)
	})
}
