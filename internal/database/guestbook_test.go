package database

import (
	"context"
	"testing"
	"time"

	"cabinbook/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestbookCRUD(t *testing.T) {
	db := setupTestDB(t)
	pub := &recordingPublisher{}
	db.SetPublisher(pub)
	ctx := context.Background()

	entry := &models.GuestbookEntry{
		ID:         uuid.NewString(),
		GuestName:  "Dana",
		GuestPhone: "0501234567",
		Message:    "Wonderful weekend, the view is stunning",
	}
	require.NoError(t, db.AddGuestbookEntry(ctx, entry))
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := db.GetGuestbookEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Message, got.Message)

	require.NoError(t, db.DeleteGuestbookEntry(ctx, entry.ID))
	_, err = db.GetGuestbookEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	assert.Equal(t, 2, pub.byTable("guestbook"))
}

func TestListGuestbookEntries_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i, msg := range []string{"first", "second", "third"} {
		entry := &models.GuestbookEntry{
			ID:         uuid.NewString(),
			GuestName:  "Guest",
			GuestPhone: "0501234567",
			Message:    msg,
		}
		require.NoError(t, db.AddGuestbookEntry(ctx, entry))
		// created_at has second resolution in SQLite; force distinct order.
		_, err := db.ExecContext(ctx, `UPDATE guestbook SET created_at = ? WHERE id = ?`,
			time.Now().Add(time.Duration(i)*time.Minute), entry.ID)
		require.NoError(t, err)
	}

	entries, err := db.ListGuestbookEntries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "first", entries[2].Message)

	t.Run("Limit", func(t *testing.T) {
		entries, err := db.ListGuestbookEntries(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestDeleteGuestbookEntry_NotFound(t *testing.T) {
	db := setupTestDB(t)
	err := db.DeleteGuestbookEntry(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
